package errors

import (
	"testing"
)

func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"group and artifact", "org.slf4j:slf4j-api", false},
		{"with version", "org.slf4j:slf4j-api:2.0.9", false},
		{"full", "io.netty:netty-transport:jar:linux-x86_64:4.1.100.Final", false},
		{"underscore artifact", "com.acme:my_lib", false},

		{"empty", "", true},
		{"no colon", "org.slf4j", true},
		{"empty group", ":slf4j-api", true},
		{"space in artifact", "org.slf4j:slf4j api", true},
		{"path traversal", "org..slf4j:api", true},
		{"control char", "org.slf4j:api\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCoordinate) {
				t.Errorf("expected INVALID_COORDINATE, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateModuleID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"dotted", "com.acme.web", false},
		{"dashed", "kafka-extension", false},

		{"empty", "", true},
		{"leading dot", ".hidden", true},
		{"slash", "a/b", true},
		{"space", "a b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModuleID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModuleID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"services prefix", "META-INF/services/", false},
		{"jar segment", "org.slf4j.slf4j-api.jar", false},

		{"empty", "", true},
		{"absolute", "/META-INF", true},
		{"traversal", "META-INF/../x", true},
		{"backslash", "META-INF\\services", true},
		{"null byte", "META\x00INF", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://repo1.maven.org/maven2", false},
		{"file:///var/m2", false},
		{"", true},
		{"ftp://example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
