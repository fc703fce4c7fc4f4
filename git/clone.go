package git

import (
	"io/ioutil"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/pkg/errors"
)

var gitCloneFunc = gitClone

const repositoryDirPrefix = "mq-topology"

type Options struct {
	Url                string `json:"url" yaml:"url" toml:"url"`
	PrivateKeyFilepath string `json:"privateKeyFilepath" yaml:"privateKeyFilepath" toml:"privateKeyFilepath"`
	Passphrase         string `json:"passphrase" yaml:"passphrase" toml:"passphrase"`
}

// CloneRepository makes a shallow clone of the default branch into a new
// temporary directory. The caller removes the directory.
func CloneRepository(options Options) (repositoryPath string, err error) {
	if options.Url == "" {
		return "", errors.New("Git url could not be empty.")
	}

	tmpDir, err := ioutil.TempDir("", repositoryDirPrefix)
	if err != nil {
		return "", err
	}

	err = gitCloneFunc(tmpDir, options)
	if err != nil {
		os.RemoveAll(tmpDir)
		return "", errors.Errorf("Git repository[%s] could not be cloned: %s", options.Url, err)
	}

	return tmpDir, nil
}

func gitClone(tmpDir string, options Options) error {
	cloneOptions := &git.CloneOptions{
		URL:   options.Url,
		Depth: 1,
	}

	if options.PrivateKeyFilepath != "" {
		auth, err := ssh.NewPublicKeysFromFile(ssh.DefaultUsername, options.PrivateKeyFilepath, options.Passphrase)
		if err != nil {
			return err
		}

		cloneOptions.Auth = auth
	}

	err := cloneOptions.Validate()
	if err != nil {
		return err
	}

	_, err = git.PlainClone(tmpDir, false, cloneOptions)

	return err
}
