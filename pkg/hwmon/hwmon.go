// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ReadInt reads an integer value from the specified hwmon file path.
func ReadInt(path string) (int, error) {
	return ReadIntCtx(context.Background(), path)
}

// ReadIntCtx reads an integer value from the specified hwmon file path with context support.
func ReadIntCtx(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}

	done := make(chan struct {
		value int
		err   error
	}, 1)

	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			done <- struct {
				value int
				err   error
			}{0, mapFileError(err, path)}
			return
		}

		value, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			done <- struct {
				value int
				err   error
			}{0, fmt.Errorf("%w: failed to parse integer from %s: %w", ErrInvalidValue, path, err)}
			return
		}

		done <- struct {
			value int
			err   error
		}{value, nil}
	}()

	select {
	case result := <-done:
		return result.value, result.err
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %w", ErrOperationTimeout, ctx.Err())
	}
}

// WriteInt writes an integer value to the specified hwmon file path.
func WriteInt(path string, value int) error {
	return WriteIntCtx(context.Background(), path, value)
}

// WriteIntCtx writes an integer value to the specified hwmon file path with context support.
func WriteIntCtx(ctx context.Context, path string, value int) error {
	if path == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}

	done := make(chan error, 1)

	go func() {
		data := strconv.Itoa(value)
		err := os.WriteFile(path, []byte(data), 0o600)
		if err != nil {
			done <- mapFileError(err, path)
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrOperationTimeout, ctx.Err())
	}
}

// ReadString reads a string value from the specified hwmon file path.
func ReadString(path string) (string, error) {
	return ReadStringCtx(context.Background(), path)
}

// ReadStringCtx reads a string value from the specified hwmon file path with context support.
func ReadStringCtx(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}

	done := make(chan struct {
		value string
		err   error
	}, 1)

	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			done <- struct {
				value string
				err   error
			}{"", mapFileError(err, path)}
			return
		}

		value := strings.TrimSpace(string(data))
		done <- struct {
			value string
			err   error
		}{value, nil}
	}()

	select {
	case result := <-done:
		return result.value, result.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrOperationTimeout, ctx.Err())
	}
}

// WriteString writes a string value to the specified hwmon file path.
func WriteString(path, value string) error {
	return WriteStringCtx(context.Background(), path, value)
}

// WriteStringCtx writes a string value to the specified hwmon file path with context support.
func WriteStringCtx(ctx context.Context, path, value string) error {
	if path == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}

	done := make(chan error, 1)

	go func() {
		err := os.WriteFile(path, []byte(value), 0o600)
		if err != nil {
			done <- mapFileError(err, path)
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrOperationTimeout, ctx.Err())
	}
}

// FileExists checks if a hwmon file exists.
func FileExists(path string) bool {
	return FileExistsCtx(context.Background(), path)
}

// FileExistsCtx checks if a hwmon file exists with context support.
func FileExistsCtx(ctx context.Context, path string) bool {
	if path == "" {
		return false
	}

	done := make(chan bool, 1)

	go func() {
		_, err := os.Stat(path)
		done <- err == nil
	}()

	select {
	case exists := <-done:
		return exists
	case <-ctx.Done():
		return false
	}
}

// mapFileError maps OS file errors to hwmon package errors.
func mapFileError(err error, path string) error {
	if err == nil {
		return nil
	}

	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if os.IsPermission(err) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	}
	var pe *os.PathError
	if errors.As(err, &pe) {
		var errno syscall.Errno
		if errors.As(pe.Err, &errno) {
			switch errno {
			case syscall.EINVAL:
				return fmt.Errorf("%w: %s: %w", ErrInvalidValue, path, err)
			}
		}
		switch pe.Op {
		case "read":
			return fmt.Errorf("%w: %s: %w", ErrReadFailure, path, err)
		case "write", "open":
			return fmt.Errorf("%w: %s: %w", ErrWriteFailure, path, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrReadFailure, path, err)
}
