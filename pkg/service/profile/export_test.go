package profile

var (
	BuildAnalysisPrompt = buildAnalysisPrompt
	BuildMergePrompt    = buildMergePrompt
	Truncate            = truncate
)
