package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".gemini-video-analyzer"
	credentialFile = "credentials.gpg"
)

// apiKeyEnvVars are checked in order; GOOGLE_API_KEY is the primary name and
// GEMINI_API_KEY is accepted as an alias.
var apiKeyEnvVars = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}

// GetAPIKey retrieves the Gemini API key from available sources.
// Priority order:
//  1. GOOGLE_API_KEY environment variable
//  2. GEMINI_API_KEY environment variable
//  3. GPG-encrypted file at ~/.gemini-video-analyzer/credentials.gpg
func GetAPIKey() (string, error) {
	for _, name := range apiKeyEnvVars {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			log.Debug().Str("source", name).Msg("Using API key from environment variable")
			return key, nil
		}
	}

	key, err := getFromGPG()
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from GPG encrypted file")
		return key, nil
	}

	log.Debug().Err(err).Msg("No API key source available")
	return "", &ValidationError{
		Type:    ErrTypeNoKey,
		Message: "GOOGLE_API_KEY environment variable is not set",
		Err:     err,
	}
}

// getFromGPG decrypts the API key from the GPG-encrypted credentials file.
func getFromGPG() (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(credPath); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")

	args := []string{"--decrypt", "--quiet"}

	// Passphrase file must be owner-only.
	if passphrasePath, err := getPassphrasePath(); err == nil {
		if fi, statErr := os.Stat(passphrasePath); statErr == nil {
			mode := fi.Mode().Perm()
			if mode&0o077 != 0 {
				log.Warn().
					Str("passphrase_file", passphrasePath).
					Str("permissions", fmt.Sprintf("%04o", mode)).
					Msg("Passphrase file has insecure permissions (should be 0600); skipping")
			} else {
				args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", passphrasePath)
			}
		}
	}

	args = append(args, credPath)
	output, err := exec.Command("gpg", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// getCredentialPath returns the full path to the credentials file.
func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir, credentialFile), nil
}

// getPassphrasePath looks for .gpg-passphrase next to the executable, then in
// the working directory.
func getPassphrasePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	passphrasePath := filepath.Join(filepath.Dir(exe), ".gpg-passphrase")
	if _, err := os.Stat(passphrasePath); err == nil {
		return passphrasePath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(cwd, ".gpg-passphrase"), nil
}
