// Package contracts binds the deployed token, orchestrator and farm
// controller from their ABI artifacts and the deployment address book.
package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	NameToken          = "Token"
	NameOrchestrator   = "Orchestrator"
	NameFarmController = "FarmController"
)

// Names lists the contracts a session binds, in bind order
var Names = []string{NameToken, NameOrchestrator, NameFarmController}

//go:embed artifacts/*.json
var embedded embed.FS

// Artifact is the subset of a Hardhat build artifact the front end reads
type Artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
}

// LoadABI parses the ABI of contract name. With an empty dir the embedded
// artifacts are used; otherwise dir is searched as either a flat directory of
// <name>.json files or a Hardhat artifacts tree (contracts/<name>.sol/<name>.json).
func LoadABI(dir, name string) (abi.ABI, error) {
	raw, err := readArtifact(dir, name)
	if err != nil {
		return abi.ABI{}, err
	}

	var art Artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return abi.ABI{}, fmt.Errorf("decode %s artifact: %w", name, err)
	}
	if len(art.ABI) == 0 {
		return abi.ABI{}, fmt.Errorf("%s artifact has no abi", name)
	}

	parsed, err := abi.JSON(bytes.NewReader(art.ABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse %s abi: %w", name, err)
	}
	return parsed, nil
}

func readArtifact(dir, name string) ([]byte, error) {
	if dir == "" {
		raw, err := embedded.ReadFile("artifacts/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("no embedded artifact for %s: %w", name, err)
		}
		return raw, nil
	}

	candidates := []string{
		filepath.Join(dir, name+".json"),
		filepath.Join(dir, "contracts", name+".sol", name+".json"),
	}
	for _, path := range candidates {
		raw, err := os.ReadFile(path)
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("artifact for %s not found in %s", name, dir)
}
