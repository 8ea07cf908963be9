// SPDX-License-Identifier: MPL-2.0

package semver

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{input: "1.2.3", want: Version{Major: 1, Minor: 2, Patch: 3, Original: "1.2.3"}},
		{input: "v1.2.3", want: Version{Major: 1, Minor: 2, Patch: 3, Original: "v1.2.3"}},
		{input: "2.0", want: Version{Major: 2, Original: "2.0"}},
		{input: "3", want: Version{Major: 3, Original: "3"}},
		{input: "1.0.0-beta.1", want: Version{Major: 1, Prerelease: "beta.1", Original: "1.0.0-beta.1"}},
		{input: "1.0.0+build.5", want: Version{Major: 1, Original: "1.0.0+build.5"}},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "1.2.3.4", wantErr: true},
		{input: "-1.0.0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.2.0", "1.10.0", -1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0-beta.2", "1.0.0-beta.11", -1},
		{"1.0.0+build.1", "1.0.0+build.2", 0},
	}

	for _, tt := range tests {
		a, b := MustParse(tt.a), MustParse(tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := b.Compare(a); got != -tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.b, tt.a, got, -tt.want)
		}
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	if got := MustParse("v1.2.3").String(); got != "v1.2.3" {
		t.Errorf("String() = %q, want original form preserved", got)
	}

	synthetic := Version{Major: 1, Minor: 2, Patch: 3, Prerelease: "rc.1"}
	if got := synthetic.String(); got != "1.2.3-rc.1" {
		t.Errorf("String() = %q, want %q", got, "1.2.3-rc.1")
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	if !IsValid("1.2.3") {
		t.Error("expected 1.2.3 to be valid")
	}
	if IsValid("not-a-version") {
		t.Error("expected not-a-version to be invalid")
	}
}

func TestMustParsePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid version")
		}
	}()
	MustParse("bogus")
}
