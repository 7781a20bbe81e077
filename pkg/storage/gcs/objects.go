package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrObjectNotFound marks a 404 from the storage API so callers can
// distinguish missing objects from transport failures.
var ErrObjectNotFound = errors.New("gcs: object not found")

const storageBase = "https://storage.googleapis.com/storage/v1"

func objectURL(bucket, object string) string {
	return fmt.Sprintf("%s/b/%s/o/%s", storageBase, url.PathEscape(bucket), url.PathEscape(object))
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Response, error) {
	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

func statusError(resp *http.Response, op string) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrObjectNotFound
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(b) > 0 {
		return fmt.Errorf("gcs %s: %s: %s", op, resp.Status, strings.TrimSpace(string(b)))
	}
	return fmt.Errorf("gcs %s: %s", op, resp.Status)
}

// ObjectExists reports whether the object is present in the bucket.
func (c *Client) ObjectExists(ctx context.Context, bucket, object string) (bool, error) {
	if bucket == "" {
		bucket = c.defaultBucket
	}
	resp, err := c.do(ctx, http.MethodGet, objectURL(bucket, object), nil, "")
	if err != nil {
		return false, err
	}
	defer drainAndClose(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError(resp, "stat object")
	}
}

// CopyObject copies src to dst within the same or across buckets.
func (c *Client) CopyObject(ctx context.Context, srcBucket, srcObject, dstBucket, dstObject string) error {
	if srcBucket == "" {
		srcBucket = c.defaultBucket
	}
	if dstBucket == "" {
		dstBucket = c.defaultBucket
	}
	u := fmt.Sprintf(
		"%s/copyTo/b/%s/o/%s",
		objectURL(srcBucket, srcObject),
		url.PathEscape(dstBucket),
		url.PathEscape(dstObject),
	)
	resp, err := c.do(ctx, http.MethodPost, u, nil, "application/json")
	if err != nil {
		return err
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return statusError(resp, "copy object")
	}
	return nil
}

// DeleteObject removes the object; a missing object returns ErrObjectNotFound.
func (c *Client) DeleteObject(ctx context.Context, bucket, object string) error {
	if bucket == "" {
		bucket = c.defaultBucket
	}
	resp, err := c.do(ctx, http.MethodDelete, objectURL(bucket, object), nil, "")
	if err != nil {
		return err
	}
	defer drainAndClose(resp)

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	default:
		return statusError(resp, "delete object")
	}
}

// MakePublic grants allUsers read access to the object.
func (c *Client) MakePublic(ctx context.Context, bucket, object string) error {
	if bucket == "" {
		bucket = c.defaultBucket
	}
	u := objectURL(bucket, object) + "/acl"
	body := strings.NewReader(`{"entity":"allUsers","role":"READER"}`)
	resp, err := c.do(ctx, http.MethodPost, u, body, "application/json")
	if err != nil {
		return err
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return statusError(resp, "set object acl")
	}
	return nil
}

// PublicURL builds the canonical public address for an object.
func (c *Client) PublicURL(bucket, object string) string {
	if bucket == "" {
		bucket = c.defaultBucket
	}
	segments := strings.Split(object, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", url.PathEscape(bucket), strings.Join(segments, "/"))
}

// Bucket-bound variants so callers holding a handle do not need to thread the
// bucket name through every call.

func (b *Bucket) ObjectExists(ctx context.Context, object string) (bool, error) {
	return b.client.ObjectExists(ctx, b.name, object)
}

func (b *Bucket) CopyObject(ctx context.Context, srcObject, dstObject string) error {
	return b.client.CopyObject(ctx, b.name, srcObject, b.name, dstObject)
}

func (b *Bucket) DeleteObject(ctx context.Context, object string) error {
	return b.client.DeleteObject(ctx, b.name, object)
}

func (b *Bucket) MakePublic(ctx context.Context, object string) error {
	return b.client.MakePublic(ctx, b.name, object)
}

func (b *Bucket) PublicURL(object string) string {
	return b.client.PublicURL(b.name, object)
}
