package verifier

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/logger"
	"golang.org/x/xerrors"
)

// LoadVerifyingKey reads and parses a serialized verifying key, returning
// the raw bytes alongside.
func LoadVerifyingKey(path string) ([]byte, groth16.VerifyingKey, error) {
	log := logger.Logger()
	start := time.Now()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to open vk file: %w", err)
	}
	vk, err := ParseVerifyingKey(raw)
	if err != nil {
		return nil, nil, err
	}
	elapsed := time.Since(start)
	log.Debug().Msg("Successfully loaded verifying key, time: " + elapsed.String())
	return raw, vk, nil
}

// LoadProof reads and parses a serialized proof, returning the raw bytes
// alongside.
func LoadProof(path string) ([]byte, groth16.Proof, error) {
	log := logger.Logger()
	start := time.Now()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to open proof file: %w", err)
	}
	proof, err := ParseProof(raw)
	if err != nil {
		return nil, nil, err
	}
	elapsed := time.Since(start)
	log.Debug().Msg("Successfully loaded proof, time: " + elapsed.String())
	return raw, proof, nil
}

func SaveVerifyingKey(path string, vk groth16.VerifyingKey) error {
	return save(path, "verifying key", vk)
}

func SaveProof(path string, proof groth16.Proof) error {
	return save(path, "proof", proof)
}

func save(path, what string, obj io.WriterTo) error {
	log := logger.Logger()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return xerrors.Errorf("failed to create directory for %s: %w", what, err)
	}
	log.Info().Msg("Saving " + what + " to " + path)
	start := time.Now()
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("failed to create %s file: %w", what, err)
	}
	defer f.Close()
	if _, err := obj.WriteTo(f); err != nil {
		return xerrors.Errorf("failed to write %s: %w", what, err)
	}
	elapsed := time.Since(start)
	log.Debug().Msg("Successfully saved " + what + ", time: " + elapsed.String())
	return nil
}

// Marshal returns the canonical serialization of a key or proof.
func Marshal(obj io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := obj.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
