package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"resumelift/internal/errors"
)

// operationPrompts returns the prompt override configuration for each
// pipeline operation, keyed by operation name
func (c *Config) operationPrompts() map[string]*PromptConfig {
	return map[string]*PromptConfig{
		"gap":      &c.AI.Gap.CustomPrompts,
		"assess":   &c.AI.Assess.CustomPrompts,
		"strategy": &c.AI.Strategy.CustomPrompts,
		"write":    &c.AI.Write.CustomPrompts,
		"track":    &c.AI.Track.CustomPrompts,
	}
}

// loadPromptsFromFiles loads custom prompts from external files if file paths
// are specified in any operation configuration
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	loaded := 0
	for op, prompts := range c.operationPrompts() {
		lp, n, err := loadOperationPrompts(op, prompts)
		if err != nil {
			return err
		}
		if n > 0 {
			setLoadedPrompts(op, lp)
			loaded += n
		}
	}

	if loaded == 0 {
		log.Println("[CONFIG] No custom prompt files configured - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total prompts loaded from files: %d", loaded)
	}

	return nil
}

// loadOperationPrompts reads the system and user prompt files for one
// operation, returning the loaded content and how many files were read
func loadOperationPrompts(op string, prompts *PromptConfig) (LoadedPrompts, int, error) {
	var lp LoadedPrompts
	n := 0

	if prompts.SystemFile != "" {
		content, err := loadPromptFromFile(prompts.SystemFile, "system", op)
		if err != nil {
			return lp, 0, err
		}
		lp.System = content
		n++
	}
	if prompts.UserFile != "" {
		content, err := loadPromptFromFile(prompts.UserFile, "user", op)
		if err != nil {
			return lp, 0, err
		}
		lp.User = content
		n++
	}

	return lp, n, nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	for op, prompts := range c.operationPrompts() {
		validateFile(prompts.SystemFile, "system", op)
		validateFile(prompts.UserFile, "user", op)
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// WatchPromptFiles watches the configured prompt files and reloads them on
// change, so prompt tuning does not require a restart. Returns a stop
// function, or a nil stop function when no prompt files are configured.
func (c *Config) WatchPromptFiles(ctx context.Context, logger *errors.Logger) (func(), error) {
	// Map watched paths back to the operations that use them
	type target struct {
		op      string
		prompts *PromptConfig
	}
	targets := make(map[string][]target)
	for op, prompts := range c.operationPrompts() {
		for _, file := range []string{prompts.SystemFile, prompts.UserFile} {
			if file == "" {
				continue
			}
			absPath, err := filepath.Abs(file)
			if err != nil {
				return nil, fmt.Errorf("resolving prompt file path %s: %w", file, err)
			}
			targets[absPath] = append(targets[absPath], target{op: op, prompts: prompts})
		}
	}

	if len(targets) == 0 {
		return func() {}, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating prompt file watcher: %w", err)
	}

	// Watch directories rather than files so editor rename-and-replace
	// saves are still observed
	dirs := make(map[string]bool)
	for path := range targets {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching prompt directory %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				path, err := filepath.Abs(event.Name)
				if err != nil {
					continue
				}
				for _, t := range targets[path] {
					lp, _, err := loadOperationPrompts(t.op, t.prompts)
					if err != nil {
						logger.Warn("Prompt file reload failed, keeping previous prompts",
							"operation", t.op, "file", path, "error", err)
						continue
					}
					setLoadedPrompts(t.op, lp)
					logger.Info("Reloaded prompts from file", "operation", t.op, "file", path)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Prompt file watcher error", "error", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
