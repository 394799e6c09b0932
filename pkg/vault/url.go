package vault

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultSFTPPort is used when an sftp:// URL carries no explicit port.
const DefaultSFTPPort = 22

// Location represents either a local vault directory or a remote SFTP vault.
type Location struct {
	IsRemote bool

	// For local vaults
	LocalPath string

	// For SFTP vaults
	Host string
	Port int
	User string
	Path string // Remote directory holding the blobs
}

// ParseLocation parses a vault location string, detecting whether it is a
// local directory or an SFTP URL.
// SFTP URLs have the format: sftp://user@host:port/path/to/vault
// Port is optional (defaults to 22)
// Examples:
//   - sftp://joe@myserver.com/backups/packs
//   - sftp://joe@myserver.com:2222/backups
//   - /local/path/to/vault (local directory)
func ParseLocation(location string) (*Location, error) {
	if strings.HasPrefix(location, "sftp://") {
		return parseSFTPURL(location)
	}

	return &Location{
		IsRemote:  false,
		LocalPath: location,
	}, nil
}

// parseSFTPURL parses an SFTP URL into its components.
func parseSFTPURL(sftpURL string) (*Location, error) {
	u, err := url.Parse(sftpURL) //nolint:varnamelen // u is idiomatic for URL
	if err != nil {
		return nil, fmt.Errorf("invalid SFTP URL: %w", err)
	}

	if u.Scheme != "sftp" {
		return nil, fmt.Errorf("expected sftp:// scheme, got %s://", u.Scheme) //nolint:err113 // URL validation with actual scheme
	}

	if u.User == nil || u.User.Username() == "" {
		return nil, fmt.Errorf("SFTP URL must include username (sftp://user@host/path)") //nolint:err113,perfsprint,lll // URL validation with format guidance
	}
	user := u.User.Username()

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("SFTP URL must include host") //nolint:err113,perfsprint // URL validation error
	}

	port := DefaultSFTPPort
	if portStr := u.Port(); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid port number: %w", err)
		}
		port = p
	}

	// SFTP path convention:
	//   sftp://user@host/path  → relative to home directory (strip leading /)
	//   sftp://user@host//path → absolute path /path (strip one /)
	//   sftp://user@host       → home directory (.)
	remotePath := u.Path
	//nolint:gocritic // if-else chain is clearer than switch for mixed conditions
	if remotePath == "" || remotePath == "/" {
		remotePath = "."
	} else if strings.HasPrefix(remotePath, "//") {
		remotePath = remotePath[1:]
	} else {
		remotePath = strings.TrimPrefix(remotePath, "/")
	}

	return &Location{
		IsRemote: true,
		Host:     host,
		Port:     port,
		User:     user,
		Path:     remotePath,
	}, nil
}

// Open connects to the location and returns a Store for it.
func (l *Location) Open() (Store, error) {
	if !l.IsRemote {
		return NewLocalStore(l.LocalPath)
	}

	conn, err := Connect(l.Host, l.Port, l.User)
	if err != nil {
		return nil, err
	}

	return NewSFTPStore(conn, l.Path)
}
