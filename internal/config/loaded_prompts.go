package config

import (
	"sync"
)

// LoadedPrompts holds prompt content loaded from external files for one
// pipeline operation. Empty fields mean no file override is active.
type LoadedPrompts struct {
	System string
	User   string
}

var (
	loadedPromptsMu sync.RWMutex
	loadedPrompts   = map[string]LoadedPrompts{}
)

// GetPromptsForOperation returns a copy of the file-loaded prompts for a
// pipeline operation ("gap", "assess", "strategy", "write", "track").
// Safe for concurrent use with the prompt file watcher.
func GetPromptsForOperation(operation string) LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts[operation]
}

// setLoadedPrompts replaces the loaded prompts for one operation
func setLoadedPrompts(operation string, prompts LoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts[operation] = prompts
}

// resetLoadedPrompts clears all loaded prompts. Used by tests and full reloads.
func resetLoadedPrompts() {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = map[string]LoadedPrompts{}
}
