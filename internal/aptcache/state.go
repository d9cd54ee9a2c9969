package aptcache

import (
	"fmt"
	"strings"
)

// The status triple of a package as dpkg records it: what the user
// selected, whether the package needs attention, and how far the
// installation got. The numeric values mirror dpkg's encoding; the
// current-state encoding has an unused slot, kept here as a
// placeholder so the numbers line up.

type SelectionState uint8

const (
	SelectionUnknown SelectionState = iota
	SelectionInstall
	SelectionHold
	SelectionDeinstall
	SelectionPurge
)

var selectionWords = [...]string{"unknown", "install", "hold", "deinstall", "purge"}

func (s SelectionState) String() string {
	if int(s) >= len(selectionWords) {
		panic(fmt.Sprintf("selection state %d out of range", s))
	}
	return selectionWords[s]
}

type InstallState uint8

const (
	InstallOK InstallState = iota
	InstallReinstReq
	InstallHold
	InstallHoldReinstReq
)

var installWords = [...]string{"ok", "reinstreq", "hold", "hold-reinstreq"}

func (s InstallState) String() string {
	if int(s) >= len(installWords) {
		panic(fmt.Sprintf("install state %d out of range", s))
	}
	return installWords[s]
}

type CurrentState uint8

const (
	StateNotInstalled CurrentState = iota
	StateUnpacked
	StateHalfConfigured
	stateInvalid // unused slot in the underlying encoding
	StateHalfInstalled
	StateConfigFiles
	StateInstalled
	StateTriggersAwaited
	StateTriggersPending
)

var currentWords = [...]string{
	"not-installed", "unpacked", "half-configured", "INVALID",
	"half-installed", "config-files", "installed", "triggers-awaited",
	"triggers-pending",
}

func (s CurrentState) String() string {
	if int(s) >= len(currentWords) {
		panic(fmt.Sprintf("current state %d out of range", s))
	}
	return currentWords[s]
}

func parseSelectionState(w string) (SelectionState, error) {
	for i, word := range selectionWords {
		if w == word {
			return SelectionState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown selection state %q", w)
}

func parseInstallState(w string) (InstallState, error) {
	for i, word := range installWords {
		if w == word {
			return InstallState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown install state %q", w)
}

func parseCurrentState(w string) (CurrentState, error) {
	for i, word := range currentWords {
		if CurrentState(i) == stateInvalid {
			continue
		}
		if w == word {
			return CurrentState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown current state %q", w)
}

// ParseStatusTriple parses the Status field of a dpkg status stanza,
// e.g. "install ok installed".
func ParseStatusTriple(s string) (SelectionState, InstallState, CurrentState, error) {
	words := strings.Fields(s)
	if len(words) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed status %q, expected three words", s)
	}
	sel, err := parseSelectionState(words[0])
	if err != nil {
		return 0, 0, 0, err
	}
	inst, err := parseInstallState(words[1])
	if err != nil {
		return 0, 0, 0, err
	}
	cur, err := parseCurrentState(words[2])
	if err != nil {
		return 0, 0, 0, err
	}
	return sel, inst, cur, nil
}
