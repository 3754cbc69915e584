package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
)

// DefinitionRepositoryImpl implementa o DefinitionRepository.
type DefinitionRepositoryImpl struct{}

// NewDefinitionRepository cria uma nova implementação do DefinitionRepository.
func NewDefinitionRepository() repository.DefinitionRepository {
	return &DefinitionRepositoryImpl{}
}

// definitionFile is the on-disk shape of a definitions file.
type definitionFile struct {
	Indicators []entity.IndicatorDefinition `json:"indicators" yaml:"indicators" toml:"indicators"`
}

// LoadDefinitions devolve as definições built-in e, se um arquivo TOML, YAML
// ou JSON for informado, sobrepõe as definições dele. A resolução de versão
// (maior vence por indicator_id) fica a cargo do registry.
func (r *DefinitionRepositoryImpl) LoadDefinitions(filePath string) ([]entity.IndicatorDefinition, error) {
	definitions := DefaultDefinitions()
	if filePath == "" {
		return definitions, nil
	}

	fileExtension := strings.ToLower(filepath.Ext(filePath))

	// Verifica se o arquivo existe
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing definitions file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading definitions file: %w", err)
	}

	var file definitionFile

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &file); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &file); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &file); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported definitions file format: %s", fileExtension)
	}

	for i, def := range file.Indicators {
		if err := validateDefinition(def); err != nil {
			return nil, fmt.Errorf("definitions file entry %d: %w", i, err)
		}
	}

	return append(definitions, file.Indicators...), nil
}

func validateDefinition(def entity.IndicatorDefinition) error {
	if def.IndicatorID == "" {
		return fmt.Errorf("indicator without indicator_id")
	}
	if def.Version < 1 {
		return fmt.Errorf("indicator %s: version must be >= 1", def.IndicatorID)
	}
	if def.Category == "" {
		return fmt.Errorf("indicator %s: category is required", def.IndicatorID)
	}
	if len(def.Probes) == 0 {
		return fmt.Errorf("indicator %s: at least one probe is required", def.IndicatorID)
	}
	for _, probe := range def.Probes {
		if probe.Service == "" || probe.Operation == "" {
			return fmt.Errorf("indicator %s: probe without service/operation", def.IndicatorID)
		}
	}
	if def.Criteria == "" && def.Trigger == nil {
		return fmt.Errorf("indicator %s: either criteria or trigger is required", def.IndicatorID)
	}
	return nil
}
