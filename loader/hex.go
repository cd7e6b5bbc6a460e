package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/rvgold/insts"
)

// LoadHex reads a hex image file. Each non-blank line holds one word of up
// to 8 hex digits. Reading stops at capacity; further words are counted in
// Image.Dropped and otherwise ignored.
func LoadHex(path string, capacity int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	img, err := ReadHex(f, capacity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img.Source = path

	return img, nil
}

// ReadHex reads a hex image from r.
func ReadHex(r io.Reader, capacity int) (*Image, error) {
	img := &Image{}
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if len(img.Words) >= capacity {
			img.Dropped++
			continue
		}

		word, err := parseHexWord(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q: %w", ErrMalformedImage, line, text, err)
		}
		img.Words = append(img.Words, word)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedImage, line+1, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}

	return img, nil
}

// LoadHexData reads a hex file of initial data memory words. Each 32-bit
// word is sign-extended to the architectural width.
func LoadHexData(path string, capacity int) ([]insts.Word, error) {
	img, err := LoadHex(path, capacity)
	if err != nil {
		return nil, err
	}

	data := make([]insts.Word, len(img.Words))
	for i, w := range img.Words {
		data[i] = insts.SignExtend(w, 32)
	}
	return data, nil
}

var (
	errWordTooWide = errors.New("wider than 32 bits")
	errNotHex      = errors.New("not a hex word")
)

func parseHexWord(text string) (uint32, error) {
	if len(text) > 8 {
		return 0, errWordTooWide
	}
	v, err := strconv.ParseUint(text, 16, 32)
	if err != nil {
		return 0, errNotHex
	}
	return uint32(v), nil
}
