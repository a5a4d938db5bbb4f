package java

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMajor(t *testing.T) {
	cases := []struct {
		banner string
		major  int
	}{
		{`openjdk version "17.0.9" 2023-10-17`, 17},
		{`openjdk version "21" 2023-09-19`, 21},
		{`java version "1.8.0_392"`, 8},
		{`openjdk version "11.0.21+9"`, 11},
		{`java version "1.7.0"`, 7},
	}

	for _, tc := range cases {
		major, err := ParseMajor(tc.banner)
		require.NoError(t, err, tc.banner)
		assert.Equal(t, tc.major, major, tc.banner)
	}
}

func TestParseMajorRejectsGarbage(t *testing.T) {
	_, err := ParseMajor("command not found")
	assert.Error(t, err)

	_, err = ParseMajor(`version "not-a-number"`)
	assert.Error(t, err)
}

func TestParseVendor(t *testing.T) {
	cases := []struct {
		banner string
		vendor string
	}{
		{"OpenJDK Runtime Environment Temurin-17.0.9+9", "Eclipse Adoptium"},
		{"OpenJDK Runtime Environment Corretto-17.0.9.8.1", "Amazon Corretto"},
		{"OpenJDK Runtime Environment Zulu17.46+19-CA", "Azul Zulu"},
		{"OpenJDK Runtime Environment (build 17.0.9)", "OpenJDK"},
		{"Java(TM) SE Runtime Environment", "Oracle"},
		{"some exotic jvm", "Unknown"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.vendor, ParseVendor(tc.banner), tc.banner)
	}
}
