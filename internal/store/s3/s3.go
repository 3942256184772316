// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/snapshot"
)

// API is the subset of the S3 client the store uses.
type API interface {
	s3v2.ListObjectsV2APIClient
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// Store keeps snapshots under Bucket/Prefix with the same layout as the local
// store. The manifest is uploaded last and List ignores containers without
// one, so a partial upload is never visible.
type Store struct {
	Client  API
	Bucket  string
	Prefix  string
	Decoder snapshot.RawDecoder

	mu sync.Mutex
}

var _ snapshot.Store = (*Store)(nil)

// Write implements snapshot.Store.
func (st *Store) Write(ctx context.Context, s *snapshot.Snapshot) (snapshot.Handle, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.write(ctx, s)
}

// WriteNext implements snapshot.Store.
func (st *Store) WriteNext(ctx context.Context, s *snapshot.Snapshot, clock snapshot.Clock) (snapshot.Handle, *snapshot.Snapshot, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	handles, err := st.List(ctx)
	if err != nil {
		return snapshot.Handle{}, nil, err
	}
	var floor snapshot.Handle
	if latest, ok := snapshot.Latest(handles); ok {
		floor = latest
	}
	stamped := s.WithStamp(snapshot.After(clock, floor.Stamp))

	h, err := st.write(ctx, stamped)
	if err != nil {
		return snapshot.Handle{}, nil, err
	}

	// S3 has no lock to hold across list and publish. A writer that listed
	// before our manifest landed may have drawn a later stamp, so look again.
	handles, err = st.List(ctx)
	if err != nil {
		return snapshot.Handle{}, nil, err
	}
	if latest, ok := snapshot.Latest(handles); ok && latest.Stamp.After(h.Stamp) {
		return h, stamped, fmt.Errorf("%w: %s published after %s", snapshot.ErrSuperseded, latest.Name, h.Name)
	}
	return h, stamped, nil
}

func (st *Store) write(ctx context.Context, s *snapshot.Snapshot) (snapshot.Handle, error) {
	name := snapshot.FormatStamp(s.Stamp)

	handles, err := st.List(ctx)
	if err != nil {
		return snapshot.Handle{}, err
	}
	if _, ok := snapshot.Find(handles, s.Stamp); ok {
		return snapshot.Handle{}, fmt.Errorf("%w: %s", snapshot.ErrDuplicateTimestamp, name)
	}

	files, err := snapshot.Marshal(s)
	if err != nil {
		return snapshot.Handle{}, err
	}

	for _, f := range files {
		in := &s3v2.PutObjectInput{
			Bucket:      awsv2.String(st.Bucket),
			Key:         awsv2.String(st.key(name, snapshot.RawDir, f.Name)),
			Body:        bytes.NewReader(f.Data),
			ContentType: awsv2.String("application/json"),
		}
		// The manifest publishes the snapshot; refuse to replace one.
		if f.Name == snapshot.ManifestFile {
			in.IfNoneMatch = awsv2.String("*")
		}
		if _, err := st.Client.PutObject(ctx, in); err != nil {
			if f.Name == snapshot.ManifestFile && isPreconditionFailed(err) {
				return snapshot.Handle{}, fmt.Errorf("%w: %s", snapshot.ErrDuplicateTimestamp, name)
			}
			return snapshot.Handle{}, fmt.Errorf("failed to put %s: %w", *in.Key, err)
		}
	}
	log.Debugf("wrote snapshot %s to %s", name, st)

	return snapshot.Handle{Name: name, Stamp: s.Stamp, RawDir: snapshot.RawDir}, nil
}

// container collects what List saw under one container name.
type container struct {
	rawDir   string
	manifest bool
	raw      bool
}

// List implements snapshot.Store.
func (st *Store) List(ctx context.Context) ([]snapshot.Handle, error) {
	prefix := st.key("")
	seen := map[string]*container{}

	paginator := s3v2.NewListObjectsV2Paginator(st.Client, &s3v2.ListObjectsV2Input{
		Bucket: awsv2.String(st.Bucket),
		Prefix: awsv2.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", st.Bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			parts := strings.Split(strings.TrimPrefix(*obj.Key, prefix), "/")
			if len(parts) != 3 || !snapshot.IsRawDir(parts[1]) {
				continue
			}
			c := seen[parts[0]]
			if c == nil {
				c = &container{}
				seen[parts[0]] = c
			}
			// An exact "raw" wins over other casings.
			if c.rawDir == "" || parts[1] == snapshot.RawDir {
				c.rawDir = parts[1]
			}
			switch parts[2] {
			case snapshot.ManifestFile:
				c.manifest = true
			case snapshot.RawFile:
				c.raw = true
			}
		}
	}

	var handles []snapshot.Handle
	for name, c := range seen {
		stamp, legacy, err := snapshot.ParseStamp(name)
		if err != nil {
			log.Tracef("skipping %s: %v", name, err)
			continue
		}
		if c.manifest {
			legacy = false
		}
		if !c.manifest && !(legacy && c.raw) {
			log.Debugf("skipping %s: incomplete", name)
			continue
		}
		handles = append(handles, snapshot.Handle{Name: name, Stamp: stamp, RawDir: c.rawDir, Legacy: legacy})
	}

	snapshot.SortHandles(handles)
	return handles, nil
}

// Previous implements snapshot.Store.
func (st *Store) Previous(ctx context.Context, h snapshot.Handle) (snapshot.Handle, bool, error) {
	handles, err := st.List(ctx)
	if err != nil {
		return snapshot.Handle{}, false, err
	}
	return snapshot.PreviousOf(handles, h)
}

// Read implements snapshot.Store. Units are immutable once published, so they
// are served from the local cache when possible.
func (st *Store) Read(ctx context.Context, h snapshot.Handle) (*snapshot.Snapshot, error) {
	if err := PurgeCache(); err != nil {
		log.WithError(err).Warn("failed to purge cache")
	}

	rawDir := h.RawDir
	if rawDir == "" {
		handles, err := st.List(ctx)
		if err != nil {
			return nil, err
		}
		found, ok := snapshot.Find(handles, h.Stamp)
		if !ok {
			return nil, fmt.Errorf("%w: %s", snapshot.ErrNotFound, h.Name)
		}
		rawDir = found.RawDir
	}

	units := st.units()
	hits := 0
	read := func(name string) ([]byte, error) {
		data, hit, err := units.Load(h.Name, rawDir+"/"+name, func() ([]byte, error) {
			return st.get(ctx, st.key(h.Name, rawDir, name))
		})
		if hit {
			hits++
		}
		return data, err
	}

	s, err := snapshot.Unmarshal(h, read, st.Decoder)
	if err == nil || hits == 0 || !errors.Is(err, snapshot.ErrCorruptSnapshot) {
		return s, err
	}

	// The bucket copy is authoritative; a bad local copy is dropped and the
	// snapshot read again from S3.
	log.WithError(err).Warnf("cached copy of %s is corrupt, refetching", h.Name)
	if err := units.Evict(h.Name); err != nil {
		return nil, err
	}
	return snapshot.Unmarshal(h, read, st.Decoder)
}

func (st *Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := st.Client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(st.Bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", snapshot.ErrNotFound, st.Bucket, key)
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", st.Bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", st.Bucket, key, err)
	}
	return data, nil
}

// Sink implements snapshot.Store.
func (st *Store) Sink(h snapshot.Handle) snapshot.Sink {
	return &Sink{store: st, container: h.Name}
}

func (st *Store) String() string {
	return "s3://" + path.Join(st.Bucket, st.Prefix)
}

// key joins parts beneath the prefix with forward slashes. key("") is the
// listing prefix and ends in a slash unless there is no prefix.
func (st *Store) key(parts ...string) string {
	p := strings.Trim(st.Prefix, "/")
	if p == "" {
		return strings.Join(parts, "/")
	}
	return p + "/" + strings.Join(parts, "/")
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	return false
}

// Sink uploads output files beneath one container.
type Sink struct {
	store     *Store
	container string
}

// Put uploads data as <container>/<name>.
func (s *Sink) Put(ctx context.Context, name string, data []byte) error {
	key := s.store.key(s.container, name)
	_, err := s.store.Client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket: awsv2.String(s.store.Bucket),
		Key:    awsv2.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (s *Sink) String() string {
	return "s3://" + s.store.Bucket + "/" + s.store.key(s.container)
}
