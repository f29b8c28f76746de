// Package logging builds the process logger.
package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New returns a production JSON logger when mode is "production" and a
// human-readable development logger otherwise.
func New(mode string) (*zap.Logger, error) {
	if strings.EqualFold(mode, "production") {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
