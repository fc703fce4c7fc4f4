package conf

import (
	"os"
	fpath "path/filepath"

	"github.com/mqtools/mq/git"
)

var cloneRepositoryFunc = git.CloneRepository

func readFileFromGit(options git.Options, filepath string) (*Configuration, error) {

	err := checkFileExtension(filepath)
	if err != nil {
		return nil, err
	}

	repoFilepath, err := cloneRepositoryFunc(options)
	if err != nil {
		return nil, err
	}

	defer os.RemoveAll(repoFilepath)

	filepath = fpath.Join(repoFilepath, filepath)

	return readFile(filepath)
}
