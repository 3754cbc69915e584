package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudposture/aws-posture-validator-go/internal/application/usecase"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
	"github.com/cloudposture/aws-posture-validator-go/internal/shared/types"
	"github.com/cloudposture/aws-posture-validator-go/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd             *cobra.Command
	validationUseCase   *usecase.ValidationUseCase
	connectivityUseCase *usecase.ConnectivityUseCase
	exportRepo          repository.ExportRepository
	console             types.ConsoleInterface
	version             string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "posture-validator",
		Short:   "AWS Posture Validator CLI",
		Version: formattedVersion, // Use a versão formatada
		RunE:    app.runCommand,
	}

	// Personaliza a template para incluir mais informações de versão
	rootCmd.SetVersionTemplate(`{{printf "AWS Posture Validator version: %s\n" .Version}}`)

	// Adiciona flags de linha de comando
	rootCmd.PersistentFlags().StringP("tenant-id", "t", "", "Tenant to validate")
	rootCmd.PersistentFlags().BoolP("all-tenants", "a", false, "Validate every active tenant")
	rootCmd.PersistentFlags().StringP("definitions", "f", "", "Path to a TOML, YAML, or JSON indicator definitions file")
	rootCmd.PersistentFlags().StringP("region", "r", "", "AWS region for control-plane tables and probes")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", []string{"csv"}, "Specify report types: csv, json, pdf")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	rootCmd.PersistentFlags().Bool("test-connection", false, "Run the onboarding connectivity self-test and exit")
	rootCmd.PersistentFlags().String("role-arn", "", "Delegation role ARN for the connectivity self-test")
	rootCmd.PersistentFlags().String("external-id", "", "External token for the connectivity self-test")
	rootCmd.PersistentFlags().IntP("concurrency", "c", usecase.DefaultFleetConcurrency, "How many tenants to validate in parallel")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// ParseFlagValue lê o valor de uma flag direto dos argumentos, antes da
// inicialização completa do cobra. Usado para as flags de bootstrap que os
// adapters precisam conhecer antes do comando rodar.
func ParseFlagValue(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, flag+"=") {
			return strings.TrimPrefix(arg, flag+"=")
		}
	}
	return ""
}

// ParseLogLevel lê apenas a flag de log, para que o logger exista antes dos
// adapters.
func ParseLogLevel(args []string) string {
	if level := ParseFlagValue(args, "--log-level"); level != "" {
		return level
	}
	return "info"
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	tenantID, _ := app.rootCmd.Flags().GetString("tenant-id")
	allTenants, _ := app.rootCmd.Flags().GetBool("all-tenants")
	definitions, _ := app.rootCmd.Flags().GetString("definitions")
	region, _ := app.rootCmd.Flags().GetString("region")
	reportName, _ := app.rootCmd.Flags().GetString("report-name")
	reportType, _ := app.rootCmd.Flags().GetStringSlice("report-type")
	dir, _ := app.rootCmd.Flags().GetString("dir")
	testConnection, _ := app.rootCmd.Flags().GetBool("test-connection")
	roleARN, _ := app.rootCmd.Flags().GetString("role-arn")
	externalID, _ := app.rootCmd.Flags().GetString("external-id")
	concurrency, _ := app.rootCmd.Flags().GetInt("concurrency")
	logLevel, _ := app.rootCmd.Flags().GetString("log-level")

	// Set default directory to current working directory if not specified
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	} else {
		// Convert to absolute path
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	args := &types.CLIArgs{
		TenantID:        tenantID,
		AllTenants:      allTenants,
		DefinitionsFile: definitions,
		Region:          region,
		ReportName:      reportName,
		ReportType:      reportType,
		Dir:             dir,
		TestConnection:  testConnection,
		RoleARN:         roleARN,
		ExternalID:      externalID,
		Concurrency:     concurrency,
		LogLevel:        logLevel,
	}

	return args, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	// Exibe o banner de boas-vindas
	displayWelcomeBanner(app.version)

	// Verifica a versão mais recente disponível
	go version.CheckLatestVersion(app.version)

	// Analisa os argumentos da linha de comando
	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	ctx := context.Background()

	if cliArgs.TestConnection {
		return app.connectivityUseCase.Test(ctx, cliArgs.RoleARN, cliArgs.ExternalID)
	}

	var records []entity.ExecutionRecord

	switch {
	case cliArgs.AllTenants:
		records, err = app.validationUseCase.RunFleet(ctx, cliArgs.Concurrency)
		if err != nil {
			return err
		}
	case cliArgs.TenantID != "":
		status := app.console.Status(fmt.Sprintf("Validating tenant %s...", cliArgs.TenantID))
		record, runErr := app.validationUseCase.RunTenant(ctx, cliArgs.TenantID)
		status.Stop()
		if record.ExecutionID != "" {
			records = append(records, record)
		}
		if runErr != nil {
			app.console.LogError("Validation of tenant %s failed: %v", cliArgs.TenantID, runErr)
		}
	default:
		return types.ErrNoTenantSelected
	}

	app.displayRecords(records)

	if cliArgs.ReportName != "" && len(records) > 0 {
		if err := app.exportReports(records, cliArgs); err != nil {
			return err
		}
	}

	return nil
}

// displayRecords imprime uma tabela-resumo por tenant e o detalhe por
// indicador de cada execução.
func (app *CLIApp) displayRecords(records []entity.ExecutionRecord) {
	if len(records) == 0 {
		return
	}

	table := app.console.CreateTable()
	table.AddColumn("Tenant")
	table.AddColumn("Account")
	table.AddColumn("Execution")
	table.AddColumn("Status")
	table.AddColumn("Passed")
	table.AddColumn("Failed")

	for _, rec := range records {
		table.AddRow(
			rec.TenantID,
			rec.AccountID,
			rec.ExecutionID,
			strings.ToUpper(string(rec.Status)),
			fmt.Sprintf("%d", rec.Summary.Passed),
			fmt.Sprintf("%d", rec.Summary.Failed),
		)
	}
	app.console.Println(table.Render())

	for _, rec := range records {
		if rec.Error != "" {
			app.console.LogError("Tenant %s: %s", rec.TenantID, rec.Error)
			continue
		}
		for _, res := range rec.Results {
			if res.Assertion {
				app.console.LogSuccess("%s: %s (%s confidence): %s",
					rec.TenantID, res.IndicatorID, res.Confidence, res.Reason)
			} else {
				app.console.LogWarning("%s: %s (%s confidence): %s",
					rec.TenantID, res.IndicatorID, res.Confidence, res.Reason)
			}
		}
	}
}

// exportReports grava os relatórios solicitados e loga o caminho de cada um.
func (app *CLIApp) exportReports(records []entity.ExecutionRecord, args *types.CLIArgs) error {
	for _, reportType := range args.ReportType {
		var path string
		var err error
		switch strings.ToLower(reportType) {
		case "csv":
			path, err = app.exportRepo.ExportExecutionsToCSV(records, args.ReportName, args.Dir)
		case "json":
			path, err = app.exportRepo.ExportExecutionsToJSON(records, args.ReportName, args.Dir)
		case "pdf":
			path, err = app.exportRepo.ExportExecutionsToPDF(records, args.ReportName, args.Dir)
		default:
			app.console.LogWarning("Unknown report type '%s', skipping", reportType)
			continue
		}
		if err != nil {
			return fmt.Errorf("exporting %s report: %w", reportType, err)
		}
		app.console.LogSuccess("Report saved to %s", path)
	}
	return nil
}

// SetValidationUseCase sets the validation use case for the CLI app.
func (app *CLIApp) SetValidationUseCase(useCase *usecase.ValidationUseCase) {
	app.validationUseCase = useCase
}

// SetConnectivityUseCase sets the connectivity use case for the CLI app.
func (app *CLIApp) SetConnectivityUseCase(useCase *usecase.ConnectivityUseCase) {
	app.connectivityUseCase = useCase
}

// SetExportRepository sets the export repository for the CLI app.
func (app *CLIApp) SetExportRepository(repo repository.ExportRepository) {
	app.exportRepo = repo
}

// SetConsole sets the console implementation for the CLI app.
func (app *CLIApp) SetConsole(console types.ConsoleInterface) {
	app.console = console
}
