package render

import (
	"bytes"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// pdfcpuConfig returns a relaxed validation config that never touches the
// user's pdfcpu config directory
func pdfcpuConfig() *pdfmodel.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return conf
}

// Validate checks that data is a readable PDF document
func Validate(data []byte) error {
	return api.Validate(bytes.NewReader(data), pdfcpuConfig())
}

// PageCount returns the number of pages of a PDF document
func PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), pdfcpuConfig())
}
