package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	maxLineBytes = 1024 * 1024
	pollEvery    = 250 * time.Millisecond
)

// TailOptions selects which lines Tail returns. A negative Offset asks for
// the last Limit lines; otherwise lines after Offset are returned.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// Chunk is one batch of lines and the offset to resume from.
type Chunk struct {
	Lines  []string
	Offset int64
}

// Tail reads path according to opts. A missing file yields an empty chunk.
func Tail(ctx context.Context, path string, opts TailOptions) (Chunk, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{Offset: opts.Offset}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return Chunk{Offset: opts.Offset}, fmt.Errorf("log path %q is a directory", path)
	}
	wait := max(opts.Wait, 0)

	var chunk Chunk
	if opts.Offset < 0 {
		chunk, err = lastLines(path, opts.Limit)
	} else {
		offset := opts.Offset
		if offset > info.Size() {
			// Truncated or rotated; start over at the current end.
			offset = info.Size()
		}
		chunk, err = linesFrom(path, offset)
	}
	if err != nil {
		return Chunk{Offset: opts.Offset}, err
	}
	if opts.Follow && wait > 0 && len(chunk.Lines) == 0 {
		return follow(ctx, path, chunk.Offset, wait)
	}
	return chunk, nil
}

func lastLines(path string, limit int) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		return Chunk{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return Chunk{}, fmt.Errorf("seek log file: %w", err)
		}
		return Chunk{Offset: end}, nil
	}

	ring := make([]string, 0, limit)
	next := 0
	offset, err := scanLines(file, func(line string) {
		if len(ring) < limit {
			ring = append(ring, line)
			return
		}
		ring[next] = line
		next = (next + 1) % limit
	})
	if err != nil {
		return Chunk{}, err
	}

	lines := make([]string, 0, len(ring))
	lines = append(lines, ring[next:]...)
	lines = append(lines, ring[:next]...)
	return Chunk{Lines: lines, Offset: offset}, nil
}

func linesFrom(path string, offset int64) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Chunk{}, fmt.Errorf("seek log file: %w", err)
	}
	var lines []string
	end, err := scanLines(file, func(line string) { lines = append(lines, line) })
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Lines: lines, Offset: end}, nil
}

// scanLines feeds every complete line to fn and returns the offset after
// the last byte read.
func scanLines(file *os.File, fn func(string)) (int64, error) {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read log file: %w", err)
	}
	end, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("determine log offset: %w", err)
	}
	return end, nil
}

func follow(ctx context.Context, path string, offset int64, wait time.Duration) (Chunk, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	for {
		chunk, err := linesFrom(path, offset)
		if err != nil {
			return Chunk{Offset: offset}, err
		}
		if len(chunk.Lines) > 0 || time.Now().After(deadline) {
			if chunk.Offset == 0 {
				chunk.Offset = offset
			}
			return chunk, nil
		}
		select {
		case <-ctx.Done():
			return Chunk{Offset: offset}, ctx.Err()
		case <-ticker.C:
		}
	}
}
