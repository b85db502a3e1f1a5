package storage

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{name: "host only", base: "https://cdn.example.com", key: "avatars/1/a.png", want: "https://cdn.example.com/avatars/1/a.png"},
		{name: "trailing slash", base: "https://cdn.example.com/", key: "avatars/1/a.png", want: "https://cdn.example.com/avatars/1/a.png"},
		{name: "leading slash on key", base: "https://cdn.example.com/media/", key: "/avatars/1/a.png", want: "https://cdn.example.com/media/avatars/1/a.png"},
		{name: "base path without slash", base: "https://cdn.example.com/media", key: "avatars/1/a.png", want: "https://cdn.example.com/media/avatars/1/a.png"},
		{name: "empty key", base: "https://cdn.example.com", key: "", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			base, err := url.Parse(tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, PublicURL(base, tt.key))
		})
	}
}

func TestNewCloudflareR2Uploader_Validation(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"})
	assert.ErrorIs(t, err, ErrInvalidR2Config)

	_, err = NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{
		AccountID: "acc", AccessKeyID: "key", SecretAccessKey: "secret", BucketName: "b", PublicBaseURL: "not a url",
	})
	assert.Error(t, err)

	u, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{
		AccountID: "acc", AccessKeyID: "key", SecretAccessKey: "secret", BucketName: "b", PublicBaseURL: "https://cdn.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/2/x.webp", u.GetPublicURL("avatars/2/x.webp"))
}
