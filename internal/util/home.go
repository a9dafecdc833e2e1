package util

import (
	"os"
	"os/user"
)

// HomeDir returns $HOME, or the passwd home directory of the current user
// when HOME is unset.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if u, err := user.Current(); err == nil {
		return u.HomeDir
	}
	return ""
}
