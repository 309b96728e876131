package utils

import (
	"github.com/ashpect/fwdproxy/pkg/request"
)

// PrintRequest dumps a parsed request line and header set under a title.
// Only debug builds produce output.
func PrintRequest(line request.Line, headers request.HeaderSet, title string) {
	Debug("%s", title)
	Debug("Method: %s", line.Method)
	Debug("URI: %s", line.URI())
	Debug("Version: %s", line.Version)
	Debug("Headers (%d):", headers.Count())
	for _, h := range headers.Headers {
		Debug("    %s: %s", h.Name, h.Value)
	}
}
