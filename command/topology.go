package command

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/mqtools/mq/git"
	"github.com/mqtools/mq/topology"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var newArchiveFunc = newS3Archive
var cloneRepositoryFunc = git.CloneRepository

type archive interface {
	Upload(ctx context.Context, dir string) (string, error)
	Download(ctx context.Context, dir string) (int, error)
}

func newS3Archive(bucket, prefix string) (archive, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, errors.Wrap(err, "AWS session could not be created")
	}
	return topology.NewS3Archive(sess, bucket, prefix), nil
}

type exportFlags struct {
	path   string
	bucket string
	prefix string
}

func newExportCommand(a *app) *cobra.Command {
	f := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every destination and binding of the environment to JSON files",
		Long: `Write every destination and binding of the environment to a directory
of JSON files which can be replayed with "mq import". With --bucket the
directory is also uploaded to S3 under --prefix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			destPath := f.path
			if destPath == "" {
				destPath = topology.DefaultExportPath(time.Now())
			}

			summary, err := topology.NewExporter(a.client).Export(ctx, a.scope, destPath)
			if err != nil {
				return err
			}

			if f.bucket != "" {
				s3Archive, err := newArchiveFunc(f.bucket, f.prefix)
				if err != nil {
					return err
				}
				key, err := s3Archive.Upload(ctx, destPath)
				if err != nil {
					return err
				}
				summary.Message += fmt.Sprintf(" and uploaded to s3://%s/%s", f.bucket, key)
			}

			return printJSON(cmd, summary)
		},
	}

	cmd.Flags().StringVar(&f.path, "path", "", "Directory to export into (default: current time as 2006-01-02_150405)")
	cmd.Flags().StringVar(&f.bucket, "bucket", "", "S3 bucket to upload the export to")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Key prefix inside the S3 bucket")
	return cmd
}

type importFlags struct {
	path          string
	bucket        string
	prefix        string
	gitUrl        string
	gitPrivateKey string
	gitPassphrase string
	gitPath       string
}

func (f *importFlags) validate() error {
	sources := 0
	for _, source := range []string{f.path, f.bucket, f.gitUrl} {
		if source != "" {
			sources++
		}
	}
	if sources != 1 {
		return errors.New("Exactly one of --path, --bucket or --git-url should be given.")
	}
	return nil
}

func (f *importFlags) location() string {
	switch {
	case f.bucket != "":
		return fmt.Sprintf("s3://%s/%s", f.bucket, f.prefix)
	case f.gitUrl != "":
		return f.gitUrl + "#" + f.gitPath
	default:
		return f.path
	}
}

// fetch makes the file set available on the local disk. The returned
// function removes whatever fetch had to create.
func (f *importFlags) fetch(ctx context.Context) (string, func(), error) {
	noop := func() {}

	switch {
	case f.bucket != "":
		dir, err := ioutil.TempDir("", "mq-import")
		if err != nil {
			return "", noop, err
		}
		cleanup := func() { os.RemoveAll(dir) }

		s3Archive, err := newArchiveFunc(f.bucket, f.prefix)
		if err != nil {
			return "", cleanup, err
		}
		count, err := s3Archive.Download(ctx, dir)
		if err != nil {
			return "", cleanup, err
		}
		if count == 0 {
			return "", cleanup, errors.Errorf("No topology files found at %s.", f.location())
		}
		logrus.Infof("Downloaded %d topology files from %s.", count, f.location())
		return dir, cleanup, nil
	case f.gitUrl != "":
		repositoryPath, err := cloneRepositoryFunc(git.Options{
			Url:                f.gitUrl,
			PrivateKeyFilepath: f.gitPrivateKey,
			Passphrase:         f.gitPassphrase,
		})
		if err != nil {
			return "", noop, err
		}
		return filepath.Join(repositoryPath, f.gitPath), func() { os.RemoveAll(repositoryPath) }, nil
	default:
		return f.path, noop, nil
	}
}

func newImportCommand(a *app) *cobra.Command {
	f := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create the destinations and bindings of an export in the environment",
		Long: `Create the destinations and bindings described by an export. Dead-letter
queues are created first, then the other queues, then the exchanges and
finally the bindings. The first failure stops the import.

The export is read from --path, from S3 with --bucket and --prefix, or from
a git repository with --git-url and --git-path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			err := f.validate()
			if err != nil {
				return err
			}

			srcPath, cleanup, err := f.fetch(ctx)
			defer cleanup()
			if err != nil {
				return err
			}

			summary, err := topology.NewImporter(a.client).Import(ctx, a.scope, srcPath)
			if err != nil {
				return err
			}
			summary.Message = "Topology was successfully imported from " + f.location()

			return printJSON(cmd, summary)
		},
	}

	cmd.Flags().StringVar(&f.path, "path", "", "Directory of an export")
	cmd.Flags().StringVar(&f.bucket, "bucket", "", "S3 bucket holding the export")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Key prefix of the export inside the S3 bucket")
	cmd.Flags().StringVar(&f.gitUrl, "git-url", "", "Git repository holding the export")
	cmd.Flags().StringVar(&f.gitPrivateKey, "git-private-key", "", "Private key file for an ssh git url")
	cmd.Flags().StringVar(&f.gitPassphrase, "git-passphrase", "", "Passphrase of the private key")
	cmd.Flags().StringVar(&f.gitPath, "git-path", "", "Directory of the export inside the repository")
	return cmd
}
