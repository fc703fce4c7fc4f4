package util

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

func CreateTempTestFile(content []byte, fileExtension string) (string, error) {

	tempFile, err := ioutil.TempFile("", "*"+fileExtension)
	if err != nil {
		return "", err
	}

	defer tempFile.Close()

	if _, err := tempFile.Write(content); err != nil {
		return "", err
	}

	return tempFile.Name(), nil
}

// CreateTempTestDir writes every name/content pair under a fresh temporary
// directory and returns the directory path.
func CreateTempTestDir(files map[string][]byte) (string, error) {

	dir, err := ioutil.TempDir("", "mq-test")
	if err != nil {
		return "", err
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
		if err := ioutil.WriteFile(path, content, 0644); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}

	return dir, nil
}
