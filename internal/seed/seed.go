package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/oracle312/AuthService/internal/auth"
	"github.com/oracle312/AuthService/internal/domain"
	"github.com/oracle312/AuthService/internal/utils"
)

// Signer is satisfied by *auth.Authenticator.
type Signer interface {
	Signup(ctx context.Context, in auth.SignupInput) (*domain.User, error)
}

var csvHeaders = []string{"username", "password", "name", "email", "position", "department"}

// SeedRandom signs up n random accounts and returns how many were created.
// Generated usernames can collide; those accounts are skipped.
func SeedRandom(ctx context.Context, s Signer, n int, password, emailDomain string) (int, error) {
	created := 0
	for i := 0; i < n; i++ {
		in := utils.GenerateRandomAccount(password, emailDomain)
		if _, err := s.Signup(ctx, in); err != nil {
			if errors.Is(err, domain.ErrDuplicateUser) {
				slog.Warn("用户已存在，跳过", "username", in.Username)
				continue
			}
			return created, fmt.Errorf("signup %s: %w", in.Username, err)
		}
		created++
	}

	return created, nil
}

// SeedFromCSV signs up every row of r. The header must name the columns
// username, password, name, email, position and department in any order;
// position and department may be left empty.
func SeedFromCSV(ctx context.Context, s Signer, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(headers))
	for i, header := range headers {
		index[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, h := range csvHeaders {
		if _, ok := index[h]; !ok {
			return 0, fmt.Errorf("missing column %q", h)
		}
	}

	created := 0
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return created, fmt.Errorf("read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		in := auth.SignupInput{
			Username:   row[index["username"]],
			Password:   row[index["password"]],
			Name:       row[index["name"]],
			Email:      row[index["email"]],
			Position:   optional(row[index["position"]]),
			Department: optional(row[index["department"]]),
		}
		if slices.Contains([]string{in.Username, in.Password, in.Name, in.Email}, "") {
			slog.Warn("缺少必填字段，跳过", "line", line)
			continue
		}

		if _, err := s.Signup(ctx, in); err != nil {
			if errors.Is(err, domain.ErrDuplicateUser) {
				slog.Warn("用户已存在，跳过", "line", line, "username", in.Username)
				continue
			}
			return created, fmt.Errorf("line %d: %w", line, err)
		}
		created++
	}

	slog.Info("插入数据完成", "count", created)
	return created, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
