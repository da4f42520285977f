package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Riwi-io-Medellin/SQL/cmd/cli/config"
	"github.com/Riwi-io-Medellin/SQL/cmd/cli/output"
	"github.com/Riwi-io-Medellin/SQL/cmd/cli/root"
	"github.com/Riwi-io-Medellin/SQL/internal/models"
	"github.com/spf13/cobra"
)

var client = &http.Client{Timeout: 30 * time.Second}

// ==========================
// CLI Command Init
// ==========================
func init() {
	root.GetRoot().AddCommand(
		listUsersCmd(),
		createUserCmd(),
		updateUserCmd(),
		deleteUserCmd(),
		importUsersCmd(),
	)
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var users []models.User
			if err := doJSON(http.MethodGet, "/users", nil, http.StatusOK, &users); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(users)
			}

			if len(users) == 0 {
				fmt.Fprintln(out, "No users found.")
				return nil
			}
			rows := make([][]interface{}, 0, len(users))
			for _, u := range users {
				rows = append(rows, []interface{}{
					u.ID,
					u.Username,
					u.Role,
					u.CreatedAt.Format(time.RFC3339),
					u.UpdatedAt.Format(time.RFC3339),
				})
			}
			output.RenderTable(out, []string{"ID", "Username", "Role", "Created", "Updated"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print users as JSON")
	return cmd
}

// ==========================
// Create User
// ==========================
func createUserCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user",
		Long:  "Create a user. When --role is omitted the server assigns its default role.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"username": args[0]}
			if role != "" {
				payload["role"] = role
			}

			var u models.User
			if err := doJSON(http.MethodPost, "/users", payload, http.StatusCreated, &u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d: %s (%s)\n", u.ID, u.Username, u.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role for the new user")
	return cmd
}

// ==========================
// Update User
// ==========================
func updateUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <username> <role>",
		Short: "Replace a user's username and role",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			payload := map[string]string{"username": args[1], "role": args[2]}
			var u models.User
			if err := doJSON(http.MethodPut, "/users/"+strconv.FormatInt(id, 10), payload, http.StatusOK, &u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated user %d: %s (%s)\n", u.ID, u.Username, u.Role)
			return nil
		},
	}
}

// ==========================
// Delete User
// ==========================
func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var res struct {
				Message string `json:"message"`
			}
			if err := doJSON(http.MethodDelete, "/users/"+strconv.FormatInt(id, 10), nil, http.StatusOK, &res); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

// ==========================
// Import Users
// ==========================
func importUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Bulk-create users from a .csv or .txt file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, contentType, err := multipartFile(args[0])
			if err != nil {
				return err
			}

			req, err := http.NewRequest(http.MethodPost, config.APIURL()+"/users/upload", body)
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", contentType)

			var res struct {
				Message string `json:"message"`
				Created int    `json:"created"`
			}
			if err := send(req, http.StatusCreated, &res); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

// ==========================
// Helpers
// ==========================
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func multipartFile(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func doJSON(method, path string, payload interface{}, want int, dst interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(req, want, dst)
}

func send(req *http.Request, want int, dst interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return apiError(resp)
	}
	if dst == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// apiError turns a non-success response into an error, preferring the
// server's {"error": "..."} message over the raw body.
func apiError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e struct {
		Error string `json:"error"`
	}
	msg := string(bytes.TrimSpace(b))
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	return fmt.Errorf("API error (%d): %s", resp.StatusCode, msg)
}
