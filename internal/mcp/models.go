package mcp

import (
	"github.com/mvp-joe/autofix/internal/diagnostic"
	"github.com/mvp-joe/autofix/internal/response"
)

// AutoFixRequest is the argument set of auto_fix_compilation_errors.
type AutoFixRequest struct {
	FilePath string `json:"file_path" validate:"required"`
}

// AnalyzeFileRequest is the argument set of analyze_file.
type AnalyzeFileRequest struct {
	FilePath string `json:"file_path" validate:"required"`
	Language string `json:"language,omitempty"`
	Mode     string `json:"mode,omitempty" validate:"omitempty,oneof=batched single"`
}

// AnalyzeFileResponse is the JSON body returned by analyze_file.
type AnalyzeFileResponse struct {
	Status      string                  `json:"status"`
	Mode        string                  `json:"mode"`
	FilePath    string                  `json:"file_path"`
	Language    string                  `json:"language"`
	Tool        string                  `json:"tool"`
	Message     string                  `json:"message"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics"`
	Fixes       []response.FixResult    `json:"fixes"`
	Dropped     int                     `json:"dropped"`
	ReportPath  string                  `json:"report_path,omitempty"`
}
