package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

func (r *ExportRepositoryImpl) ExportExecutionsToCSV(records []entity.ExecutionRecord, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{
		"Execution ID", "Tenant ID", "AWS Account ID", "Timestamp", "Status",
		"Indicators", "Passed", "Failed", "Results", "Error",
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, rec := range records {
		resultsData := ""
		for _, res := range rec.Results {
			resultsData += fmt.Sprintf("%s (v%d): %s [%s] %s\n",
				res.IndicatorID, res.Version, assertionLabel(res.Assertion), res.Confidence, res.Reason)
		}

		record := []string{
			rec.ExecutionID,
			rec.TenantID,
			rec.AccountID,
			rec.Timestamp,
			string(rec.Status),
			fmt.Sprintf("%d", rec.Summary.Total),
			fmt.Sprintf("%d", rec.Summary.Passed),
			fmt.Sprintf("%d", rec.Summary.Failed),
			// Remove quaisquer códigos ANSI que tenham “sobrado” em strings (por segurança)
			cleanRichTags(strings.TrimSpace(resultsData)),
			rec.Error,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportExecutionsToJSON(records []entity.ExecutionRecord, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportExecutionsToPDF(records []entity.ExecutionRecord, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		content = cleanRichTags(content)
		if strings.TrimSpace(content) == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	for i, rec := range records {
		pdf.AddPage()

		// Cabeçalho colorido pelo status do run
		headerColor := [3]int{0, 128, 0}
		switch rec.Status {
		case entity.StatusFail:
			headerColor = [3]int{192, 0, 0}
		case entity.StatusError:
			headerColor = [3]int{51, 51, 51}
		}

		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Posture Validation: %s", rec.TenantID)), "", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Account ID: %s  |  Execution: %s", rec.AccountID, rec.ExecutionID)), "", 1, "L", true, 0, "")
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Timestamp: %s  |  Status: %s", rec.Timestamp, strings.ToUpper(string(rec.Status)))), "", 1, "L", true, 0, "")
		pdf.Ln(10)

		summary := fmt.Sprintf("Indicators: %d\nPassed: %d\nFailed: %d",
			rec.Summary.Total, rec.Summary.Passed, rec.Summary.Failed)
		if rec.Error != "" {
			summary += fmt.Sprintf("\n\nError: %s", rec.Error)
		}
		drawSection("Summary", summary)

		var b strings.Builder
		for _, res := range rec.Results {
			b.WriteString(fmt.Sprintf("%s (v%d) %s, confidence %s\n", res.IndicatorID, res.Version, assertionLabel(res.Assertion), res.Confidence))
			b.WriteString(fmt.Sprintf("  %s\n", res.Reason))
			b.WriteString(fmt.Sprintf("  Probes: %d attempted, %d succeeded, %d failed\n\n",
				res.ProbesAttempted, res.ProbesSucceeded, res.ProbesFailed))
		}
		drawSection("Indicator Results", b.String())

		// Rodapé
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by AWS Posture Validator (Go) | %s", time.Now().Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", i+1)), "", 0, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func assertionLabel(assertion bool) string {
	if assertion {
		return "PASS"
	}
	return "FAIL"
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
