package cli

import (
	"fmt"

	"github.com/cloudposture/aws-posture-validator-go/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
         /$$$$$$$                        /$$
        | $$__  $$                      | $$
        | $$  \ $$  /$$$$$$   /$$$$$$$ /$$$$$$   /$$   /$$  /$$$$$$   /$$$$$$
        | $$$$$$$/ /$$__  $$ /$$_____/|_  $$_/  | $$  | $$ /$$__  $$ /$$__  $$
        | $$____/ | $$  \ $$|  $$$$$$   | $$    | $$  | $$| $$  \__/| $$$$$$$$
        | $$      | $$  | $$ \____  $$  | $$ /$$| $$  | $$| $$      | $$_____/
        | $$      |  $$$$$$/ /$$$$$$$/  |  $$$$/|  $$$$$$/| $$      |  $$$$$$$
        |__/       \______/ |_______/    \___/   \______/ |__/       \_______/
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("AWS Posture Validator CLI (v%s)", formattedVersion)))
}

// checkLatestVersion verifica se uma versão mais recente está disponível.
func checkLatestVersion(currentVersion string) {
	// Usa a função do pacote version para verificar por atualizações
	version.CheckLatestVersion(currentVersion)
}
