package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	TenantID        string
	AllTenants      bool
	DefinitionsFile string
	Region          string
	ReportName      string
	ReportType      []string
	Dir             string
	TestConnection  bool
	RoleARN         string
	ExternalID      string
	Concurrency     int
	LogLevel        string
}
