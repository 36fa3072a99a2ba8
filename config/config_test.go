package config

import (
	"reflect"
	"testing"
	"time"
)

func TestSources(t *testing.T) {
	c := &Config{EnabledSources: " YouTube, core,,github "}
	got := c.Sources()
	want := []string{"youtube", "core", "github"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sources: got %v, want %v", got, want)
	}
}

func TestS3Enabled(t *testing.T) {
	c := &Config{}
	if c.S3Enabled() {
		t.Fatal("empty config must not enable S3")
	}
	c = &Config{S3Bucket: "b", S3URL: "https://s3.example", S3Key: "k", S3Secret: "s"}
	if !c.S3Enabled() {
		t.Fatal("complete config must enable S3")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "learnhub")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "learnhub")
	t.Setenv("JWT_SECRET", "jwt")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DBPort != 5432 {
		t.Errorf("db port: got %d", c.DBPort)
	}
	if c.SourceTimeout != 20*time.Second {
		t.Errorf("source timeout: got %v", c.SourceTimeout)
	}
	if c.VideoMinDurationSeconds != 60 {
		t.Errorf("min duration: got %d", c.VideoMinDurationSeconds)
	}
	if c.GitHubMaxKeywords != 3 {
		t.Errorf("github max keywords: got %d", c.GitHubMaxKeywords)
	}
	if c.JWTTTL != 24*time.Hour {
		t.Errorf("jwt ttl: got %v", c.JWTTTL)
	}
}
