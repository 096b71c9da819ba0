package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/snowq-dev/snowq/internal/docval"
)

// LoadDocuments reads sample documents from a file path, or from stdin when
// the path is "-". The input may be a single JSON value, a stream of
// concatenated values, or one top-level array that the walker treats as a
// root-array document.
func LoadDocuments(path string, stdin io.Reader) ([]docval.Value, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "reading documents from stdin", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("reading documents from %s", path), err)
		}
	}

	docs, err := docval.DecodeAll(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "decoding JSON documents", err)
	}
	if len(docs) == 0 {
		return nil, NewExitError(ExitCommandError, "no JSON documents found in input")
	}
	return docs, nil
}
