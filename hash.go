package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

func hashFile(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// hashDirectory hashes the relative path and content of every regular file
// under dirPath. Test files are skipped since they never reach the image.
func hashDirectory(dirPath string) (string, error) {
	hash := sha256.New()
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matched, _ := filepath.Match("*_test.go", d.Name()); matched {
			return nil
		}
		rel, err := filepath.Rel(dirPath, path)
		if err != nil {
			return err
		}
		fileHash, err := hashFile(path)
		if err != nil {
			return err
		}
		hash.Write([]byte(filepath.ToSlash(rel)))
		hash.Write([]byte(fileHash))
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// hashSources combines the hash of dirPath with the hashes of files outside
// it that the build also reads. Missing files are skipped.
func hashSources(dirPath string, files ...string) (string, error) {
	dirHash, err := hashDirectory(dirPath)
	if err != nil {
		return "", err
	}
	hash := sha256.New()
	hash.Write([]byte(dirHash))
	for _, f := range files {
		fileHash, err := hashFile(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		hash.Write([]byte(filepath.ToSlash(f)))
		hash.Write([]byte(fileHash))
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
