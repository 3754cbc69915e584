package main

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	awsadapter "github.com/cloudposture/aws-posture-validator-go/internal/adapter/driven/aws"
	"github.com/cloudposture/aws-posture-validator-go/internal/adapter/driven/config"
	ddbadapter "github.com/cloudposture/aws-posture-validator-go/internal/adapter/driven/dynamodb"
	"github.com/cloudposture/aws-posture-validator-go/internal/adapter/driven/export"
	"github.com/cloudposture/aws-posture-validator-go/internal/adapter/driving/cli"
	"github.com/cloudposture/aws-posture-validator-go/internal/application/usecase"
	"github.com/cloudposture/aws-posture-validator-go/internal/application/validator"
	"github.com/cloudposture/aws-posture-validator-go/internal/shared/types"
	"github.com/cloudposture/aws-posture-validator-go/pkg/console"
	"github.com/cloudposture/aws-posture-validator-go/pkg/logging"
	"github.com/cloudposture/aws-posture-validator-go/pkg/version"
)

func main() {
	// O logger precisa existir antes dos adapters, então lemos só as flags de
	// bootstrap direto dos argumentos.
	logger := logging.NewLogger(cli.ParseLogLevel(os.Args[1:]))
	defer logger.Sync()

	region := cli.ParseFlagValue(os.Args[1:], "--region")
	definitionsFile := cli.ParseFlagValue(os.Args[1:], "--definitions")

	// Configuração base do plano de controle (tabelas e STS)
	ctx := context.Background()
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	baseCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading AWS configuration: %v\n", err)
		os.Exit(1)
	}

	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Inicializa os repositórios
	tables := types.TableConfigFromEnv()
	ddbClient := dynamodb.NewFromConfig(baseCfg)
	tenantRepo := ddbadapter.NewTenantRepository(ddbClient, tables, logger)
	configRepo := ddbadapter.NewIndicatorConfigRepository(ddbClient, tables, logger)
	historyRepo := ddbadapter.NewExecutionHistoryRepository(ddbClient, tables, logger)
	exportRepo := export.NewExportRepository()
	consoleImpl := console.NewConsole()

	// Carrega as definições de indicadores (built-in + arquivo opcional)
	definitionRepo := config.NewDefinitionRepository()
	definitions, err := definitionRepo.LoadDefinitions(definitionsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading indicator definitions: %v\n", err)
		os.Exit(1)
	}

	resolver := awsadapter.NewSessionResolver(tenantRepo, baseCfg.Region, logger)
	executor := awsadapter.NewProbeExecutor(logger)
	registry := validator.NewRegistry(definitions, executor, logger)

	// Inicializa os casos de uso
	validationUseCase := usecase.NewValidationUseCase(
		resolver,
		tenantRepo,
		configRepo,
		historyRepo,
		registry,
		consoleImpl,
		logger,
	)
	connectivityUseCase := usecase.NewConnectivityUseCase(resolver, consoleImpl, logger)

	// Define as dependências no aplicativo CLI
	app.SetValidationUseCase(validationUseCase)
	app.SetConnectivityUseCase(connectivityUseCase)
	app.SetExportRepository(exportRepo)
	app.SetConsole(consoleImpl)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
