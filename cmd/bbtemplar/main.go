// bbtemplar — рендер BBCode-шаблонов из файлов данных (JSON, YAML, XLSX).
package main

import (
	"fmt"
	"os"
)

// Задаются через ldflags при сборке
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
