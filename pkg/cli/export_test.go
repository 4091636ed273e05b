package cli

var EnvFileArg = envFileArg
