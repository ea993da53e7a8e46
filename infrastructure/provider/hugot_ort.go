//go:build ORT

package provider

import (
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
)

// HugotBackend names the inference backend compiled in.
const HugotBackend = "onnxruntime"

func newHugotSession(modelDir string) (*hugot.Session, error) {
	opts := []options.WithOption{}
	if libDir := ortLibDir(modelDir); libDir != "" {
		opts = append(opts, options.WithOnnxLibraryPath(libDir))
	}
	return hugot.NewORTSession(opts...)
}

// ortLibDir finds the ONNX Runtime shared library directory: ORT_LIB_DIR,
// then lib/ in the data directory that holds modelDir, then lib/ next to the
// executable. An empty result lets hugot use the platform default.
func ortLibDir(modelDir string) string {
	if dir := os.Getenv("ORT_LIB_DIR"); dir != "" {
		return dir
	}

	candidates := []string{filepath.Join(filepath.Dir(modelDir), "lib")}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "lib"))
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}
