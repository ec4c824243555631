// cmd/tools/catalog-validator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"hrdesk-automation/internal/intent"
	"hrdesk-automation/internal/models"
	"hrdesk-automation/pkg/catalog"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)

	validatePath := validateCmd.String("path", "configs/intent-catalog.json", "Path to catalog file")
	showPath := showCmd.String("path", "configs/intent-catalog.json", "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateCatalog(*validatePath); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		showCmd.Parse(os.Args[2:])
		if err := showCatalog(*showPath); err != nil {
			fmt.Printf("Error reading catalog: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

// validateCatalog runs the same checks the server runs at startup, plus a
// cross-check against the routing rules: every catalog intent must be
// reachable by at least one rule, and every rule must target a catalog
// intent. Either way round, a mismatch is dead configuration.
func validateCatalog(path string) error {
	cat, err := catalog.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return err
	}

	rules := intent.DefaultRules()
	if _, err := intent.NewRouter(rules); err != nil {
		return fmt.Errorf("routing rules are invalid: %w", err)
	}

	routed := make(map[models.Intent]bool, len(rules))
	for _, rule := range rules {
		routed[rule.Intent] = true
	}

	for _, def := range cat.Intents {
		if !routed[models.Intent(def.ID)] {
			return fmt.Errorf("intent %s has no routing rule: no request can ever reach it", def.ID)
		}
	}

	catalogued := make(map[string]bool, len(cat.Intents))
	for _, def := range cat.Intents {
		catalogued[def.ID] = true
	}
	for _, rule := range rules {
		if !catalogued[string(rule.Intent)] {
			return fmt.Errorf("rule %s targets intent %s which is not in the catalog", rule.Name, rule.Intent)
		}
	}

	fmt.Printf("Catalog validation passed. Found %d intents, %d routing rules.\n", len(cat.Intents), len(rules))
	return nil
}

func showCatalog(path string) error {
	cat, err := catalog.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	fmt.Printf("Intent catalog: %s (%d intents)\n\n", path, len(cat.Intents))
	for _, def := range cat.Intents {
		fmt.Printf("%s\n", def.ID)
		fmt.Printf("  display name:      %s\n", def.DisplayName)
		fmt.Printf("  task type:         %s\n", def.TaskType)
		fmt.Printf("  required entities: %s\n", strings.Join(def.RequiredEntities, ", "))
		fmt.Printf("  timeout:           %s\n", def.Timeout)
		fmt.Printf("  max attempts:      %d\n", def.MaxAttempts)
		if def.Description != "" {
			fmt.Printf("  description:       %s\n", def.Description)
		}
		fmt.Println()
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: catalog-validator <command> [flags]

Commands:
  validate Validate the intent catalog and its routing rule coverage
  show     Print the catalog's intents and their execution settings
  help     Show this help message

Examples:
  catalog-validator validate -path configs/intent-catalog.json
  catalog-validator show

Use 'catalog-validator <command> -h' for more information about a command.

`)
}
