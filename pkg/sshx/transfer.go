package sshx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/pkg/sftp"
)

// ErrTransfer indicates a failed file transfer to or from the
// remote host.
var ErrTransfer = errors.New("transfer failed")

// NormalizeLineEndings rewrites carriage-return line endings to the
// single line feed that remote shell interpreters expect. Module
// files authored on other platforms would otherwise fail remotely
// with confusing interpreter errors.
func NormalizeLineEndings(src []byte) []byte {
	return bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
}

// Upload stages a file under the given name in the remote working
// directory, normalizing its line endings on the way. The source
// file is not modified.
func (client *Client) Upload(name string, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTransfer, err)
	}
	data = NormalizeLineEndings(data)

	ftp, err := sftp.NewClient(client.Client)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTransfer, err)
	}
	defer ftp.Close()

	remotePath := path.Join(client.WorkDir, name)
	if err := ftp.MkdirAll(path.Dir(remotePath)); err != nil {
		return fmt.Errorf("%w: %s", ErrTransfer, err)
	}

	file, err := ftp.Create(remotePath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTransfer, err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("%w: %s", ErrTransfer, err)
	}

	client.Logger.Debug().Str("path", remotePath).Msg("Uploaded module")

	return nil
}

// Download copies a file from the remote host into the given writer.
func (client *Client) Download(remotePath string, dst io.Writer) error {
	ftp, err := sftp.NewClient(client.Client)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTransfer, err)
	}
	defer ftp.Close()

	file, err := ftp.Open(remotePath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTransfer, err)
	}
	defer file.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return fmt.Errorf("%w: %s", ErrTransfer, err)
	}

	client.Logger.Debug().Str("path", remotePath).Msg("Downloaded file")

	return nil
}
