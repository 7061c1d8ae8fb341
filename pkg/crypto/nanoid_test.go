package crypto

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestNanoIDGenerator_New(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		size     int
		wantErr  error
	}{
		{name: "defaults", alphabet: "", size: 0, wantErr: nil},
		{name: "custom alphabet", alphabet: "0123456789abcdef", size: 16, wantErr: nil},
		{name: "alphabet too short", alphabet: "abc", size: 0, wantErr: ErrAlphabetTooShort},
		{name: "alphabet too long", alphabet: strings.Repeat("a", 256), size: 0, wantErr: ErrAlphabetTooLong},
		{name: "non ascii", alphabet: "abcdefgé", size: 0, wantErr: ErrAlphabetNotASCII},
		{name: "invalid utf8", alphabet: "abcdefg\xff", size: 0, wantErr: ErrAlphabetInvalidUTF8},
		{name: "negative size", alphabet: "", size: -1, wantErr: ErrInvalidIDSize},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			gen, err := NewNanoID(test.alphabet, test.size)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("NewNanoID() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr == nil && gen == nil {
				t.Fatal("NewNanoID() returned nil generator")
			}
		})
	}
}

func TestNanoIDGenerator_GetMask(t *testing.T) {
	tests := []struct {
		alphabetLen int
		want        int
	}{
		{alphabetLen: 8, want: 7},
		{alphabetLen: 16, want: 15},
		{alphabetLen: 64, want: 63},
		{alphabetLen: 65, want: 127},
		{alphabetLen: 255, want: 255},
	}

	for _, test := range tests {
		if got := getMask(test.alphabetLen); got != test.want {
			t.Errorf("getMask(%d) = %d, want %d", test.alphabetLen, got, test.want)
		}
	}
}

func TestNanoIDGenerate_LengthAndAlphabet(t *testing.T) {
	// Arrange
	gen, err := NewNanoID("0123456789abcdef", 30)
	if err != nil {
		t.Fatalf("NewNanoID() error = %v", err)
	}

	for i := 0; i < 100; i++ {
		// Act
		id, err := gen.Generate()

		// Assert
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(id) != 30 {
			t.Fatalf("len(id) = %d, want 30", len(id))
		}
		if strings.Trim(id, "0123456789abcdef") != "" {
			t.Fatalf("id %q contains characters outside the alphabet", id)
		}
	}
}

func TestNanoIDGenerate_Uniqueness(t *testing.T) {
	// Arrange
	gen, _ := NewNanoID("", 0)
	seen := make(map[string]bool)

	// Act & Assert
	for i := 0; i < 10000; i++ {
		id, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestNanoIDGenerate_Concurrency(t *testing.T) {
	// Arrange
	gen, _ := NewNanoID("", 0)
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)

	// Act
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id, err := gen.Generate()
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %q", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

// Requirement: Valid accepts generated ids and rejects anything a client could
// forge into a different shape.
func TestNanoIDGenerator_Valid(t *testing.T) {
	gen, _ := NewNanoID("", 0)
	id, _ := gen.Generate()

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "generated id", id: id, want: true},
		{name: "empty", id: "", want: false},
		{name: "too short", id: id[:21], want: false},
		{name: "too long", id: id + "A", want: false},
		{name: "separator injected", id: "abcdefghij:lmnopqrstuv", want: false},
		{name: "space", id: "abcdefghij lmnopqrstuv", want: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := gen.Valid(test.id); got != test.want {
				t.Errorf("Valid(%q) = %v, want %v", test.id, got, test.want)
			}
		})
	}
}
