package topology

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// S3Archive copies export directories to and from a bucket. An export
// directory "dir" is stored under "<prefix>/<base of dir>/".
type S3Archive struct {
	client   s3iface.S3API
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
}

func NewS3Archive(provider client.ConfigProvider, bucket, prefix string) *S3Archive {
	svc := s3.New(provider)
	return &S3Archive{
		client:   svc,
		uploader: s3manager.NewUploaderWithClient(svc),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

func (a *S3Archive) objectKey(dir, name string) string {
	return path.Join(a.prefix, filepath.Base(filepath.Clean(dir)), name)
}

// Upload stores every topology file of dir and returns the key prefix
// under which they can be downloaded again.
func (a *S3Archive) Upload(ctx context.Context, dir string) (string, error) {
	entries, err := readTopologyFiles(dir)
	if err != nil {
		return "", err
	}

	for _, name := range entries {
		err = a.uploadFile(ctx, filepath.Join(dir, name), a.objectKey(dir, name))
		if err != nil {
			return "", err
		}
	}

	return a.objectKey(dir, ""), nil
}

func (a *S3Archive) uploadFile(ctx context.Context, filePath, key string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return &FilesystemError{Op: "open", Path: filePath, Err: err}
	}
	defer file.Close()

	_, err = a.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, "File[%s] could not be uploaded to s3://%s/%s", filePath, a.bucket, key)
	}

	logrus.Infof("Uploaded %s to s3://%s/%s.", filePath, a.bucket, key)
	return nil
}

// Download writes the topology files stored directly under the archive
// prefix into dir. Objects of deeper levels belong to other exports and are
// not taken; when the prefix holds only such exports Download fails and
// names them.
func (a *S3Archive) Download(ctx context.Context, dir string) (int, error) {
	keys := []string{}
	exports := []string{}
	listPrefix := a.prefix
	if listPrefix != "" {
		listPrefix += "/"
	}

	err := a.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(a.bucket),
		Prefix:    aws.String(listPrefix),
		Delimiter: aws.String("/"),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, object := range page.Contents {
			key := aws.StringValue(object.Key)
			if _, _, ok := ParseFileName(path.Base(key)); ok {
				keys = append(keys, key)
			}
		}
		for _, commonPrefix := range page.CommonPrefixes {
			exports = append(exports, strings.TrimSuffix(aws.StringValue(commonPrefix.Prefix), "/"))
		}
		return true
	})
	if err != nil {
		return 0, errors.Wrapf(err, "Objects of s3://%s/%s could not be listed", a.bucket, listPrefix)
	}

	if len(keys) == 0 && len(exports) > 0 {
		return 0, errors.Errorf("s3://%s/%s holds no topology files but %d nested prefixes, choose one of them as prefix: %s",
			a.bucket, listPrefix, len(exports), strings.Join(exports, ", "))
	}

	err = createDir(dir)
	if err != nil {
		return 0, err
	}

	for _, key := range keys {
		err = a.downloadFile(ctx, key, filepath.Join(dir, path.Base(key)))
		if err != nil {
			return 0, err
		}
	}

	return len(keys), nil
}

func (a *S3Archive) downloadFile(ctx context.Context, key, filePath string) error {
	output, err := a.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrapf(err, "s3://%s/%s could not be downloaded", a.bucket, key)
	}
	defer output.Body.Close()

	file, err := os.Create(filePath)
	if err != nil {
		return &FilesystemError{Op: "create", Path: filePath, Err: err}
	}
	defer file.Close()

	_, err = io.Copy(file, output.Body)
	if err != nil {
		return &FilesystemError{Op: "write", Path: filePath, Err: err}
	}

	logrus.Debugf("Downloaded s3://%s/%s to %s.", a.bucket, key, filePath)
	return nil
}

func readTopologyFiles(dir string) ([]string, error) {
	file, err := os.Open(dir)
	if err != nil {
		return nil, &FilesystemError{Op: "read directory", Path: dir, Err: err}
	}
	defer file.Close()

	names, err := file.Readdirnames(-1)
	if err != nil {
		return nil, &FilesystemError{Op: "read directory", Path: dir, Err: err}
	}

	topologyFiles := []string{}
	for _, name := range names {
		if _, _, ok := ParseFileName(name); ok {
			topologyFiles = append(topologyFiles, name)
		}
	}
	sort.Strings(topologyFiles)
	return topologyFiles, nil
}
