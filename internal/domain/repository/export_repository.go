package repository

import (
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
)

// ExportRepository writes validation reports to disk.
type ExportRepository interface {
	ExportExecutionsToCSV(records []entity.ExecutionRecord, filename, outputDir string) (string, error)
	ExportExecutionsToJSON(records []entity.ExecutionRecord, filename, outputDir string) (string, error)
	ExportExecutionsToPDF(records []entity.ExecutionRecord, filename, outputDir string) (string, error)
}
