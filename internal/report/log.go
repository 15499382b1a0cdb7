package report

import (
	"log/slog"
	"sync"
)

var pkgLogger = sync.OnceValue(func() *slog.Logger {
	return slog.Default().With("package", "report")
})
