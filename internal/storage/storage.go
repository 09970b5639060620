// Package storage persists generated media and hands back durable URLs.
package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"

	"genstudio/internal/domain"
	"genstudio/internal/providers/httpx"
)

// Object describes a stored blob.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// BlobStore writes objects and returns where they can be read from.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (Object, error)
}

// NewKey builds "<prefix>/<userID>/<uuid><ext>".
func NewKey(prefix, userID, ext string) string {
	return path.Join(prefix, userID, uuid.NewString()+ext)
}

// RemotePersister copies provider-hosted results into a BlobStore.
type RemotePersister struct {
	store BlobStore
	call  httpx.Caller
}

func NewRemotePersister(store BlobStore, call httpx.Caller) *RemotePersister {
	return &RemotePersister{store: store, call: call}
}

// PersistURL downloads sourceURL and stores it under key.
func (p *RemotePersister) PersistURL(ctx context.Context, key, sourceURL string) (Object, error) {
	data, contentType, err := p.call.Download(ctx, "storage", sourceURL)
	if err != nil {
		return Object{}, fmt.Errorf("storage: fetch remote object: %w", err)
	}
	obj, err := p.store.Put(ctx, key, data, contentType)
	if err != nil {
		return Object{}, fmt.Errorf("storage: put object: %w: %w", domain.ErrInternal, err)
	}
	return obj, nil
}
