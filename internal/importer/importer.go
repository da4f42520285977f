// Package importer turns uploaded CSV or plain-text files into users to create.
package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Riwi-io-Medellin/SQL/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, use .csv or .txt")
	ErrEmpty             = errors.New("file is empty or contains no valid rows")
	ErrNoUsernameColumn  = errors.New("csv header has no username column")
)

// usernameColumns are accepted header names for the username, in priority order.
var usernameColumns = []string{"username", "user", "name", "nombre"}

// Parse reads users from r. The format comes from filename's extension:
// .csv needs a header row with a username column and an optional role column;
// .txt holds one username per line. Blank usernames are skipped and missing
// roles get defaultRole.
func Parse(filename string, r io.Reader, defaultRole string) ([]models.NewUser, error) {
	var (
		users []models.NewUser
		err   error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		users, err = parseCSV(r, defaultRole)
	case ".txt":
		users, err = parseTXT(r, defaultRole)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrEmpty
	}
	return users, nil
}

func parseCSV(r io.Reader, defaultRole string) ([]models.NewUser, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}

	userCol := -1
	for _, name := range usernameColumns {
		if i, ok := cols[name]; ok {
			userCol = i
			break
		}
	}
	if userCol < 0 {
		return nil, ErrNoUsernameColumn
	}
	roleCol, hasRole := cols["role"]

	var users []models.NewUser
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if userCol >= len(rec) {
			continue
		}
		username := strings.TrimSpace(rec[userCol])
		if username == "" {
			continue
		}
		role := defaultRole
		if hasRole && roleCol < len(rec) {
			if v := strings.TrimSpace(rec[roleCol]); v != "" {
				role = v
			}
		}
		users = append(users, models.NewUser{Username: username, Role: role})
	}
	return users, nil
}

func parseTXT(r io.Reader, defaultRole string) ([]models.NewUser, error) {
	var users []models.NewUser
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		username := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if username == "" {
			continue
		}
		users = append(users, models.NewUser{Username: username, Role: defaultRole})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read txt: %w", err)
	}
	return users, nil
}
