package firestore

import (
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = goerr.New("not found")

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
