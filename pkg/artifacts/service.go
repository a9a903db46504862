// Package artifacts manages large contract artifacts in object storage:
// verified-source retrieval keyed off crawler labels, and validated ABI
// uploads under deterministic keys.
package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chainlens/chainlens/pkg/contracts"
	"github.com/chainlens/chainlens/pkg/db"
	"github.com/chainlens/chainlens/pkg/db/models/labels"
	"go.uber.org/zap"
)

// storageTimeout bounds each label query and object-store operation. Caller
// contexts are often deadline-free, and a stalled store must fail the call
// instead of hanging it.
const storageTimeout = 30 * time.Second

// Provenance tag attached to every uploaded object.
const (
	provenanceKey   = "chainlens"
	provenanceValue = "abi data"
)

// ErrorReporter receives best-effort failure reports.
type ErrorReporter interface {
	ErrorReport(ctx context.Context, err error, tags ...string)
}

// SourceInfo is the composed verified-source view for a contract,
// reconstructed from a label and its referenced artifact object.
type SourceInfo struct {
	Name            string          `json:"name"`
	SourceCode      string          `json:"source_code"`
	CompilerVersion string          `json:"compiler_version"`
	ABI             json.RawMessage `json:"abi"`
}

// Resource describes the externally-persisted record an uploaded ABI belongs
// to. Resource persistence itself is an external collaborator.
type Resource struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// Update is returned after an upload for the caller to merge into its own
// resource state.
type Update struct {
	ABIUploaded bool   `json:"abi"`
	Bucket      string `json:"bucket"`
	Key         string `json:"s3_path"`
}

// Service orchestrates the object store and the ABI validator.
type Service struct {
	logger   *zap.Logger
	labels   db.LabelStore
	objects  ObjectStore
	reporter ErrorReporter
	bucket   string
	prefix   string
}

func NewService(logger *zap.Logger, labelStore db.LabelStore, objects ObjectStore, rep ErrorReporter, bucket, prefix string) *Service {
	return &Service{
		logger:   logger,
		labels:   labelStore,
		objects:  objects,
		reporter: rep,
		bucket:   bucket,
		prefix:   prefix,
	}
}

// ABIKey derives the deterministic artifact key for an uploaded ABI. The same
// resource always maps to the same key, for both the write and later reads.
func ABIKey(prefix, address, resourceID string) string {
	return fmt.Sprintf("%s/%s/%s/abi.json", prefix, address, resourceID)
}

// SourceInfo returns the verified-source record for a contract, or nil when
// no verified-contract label exists. Artifacts are written by an independent
// crawl pipeline and may lag or be malformed, so fetch and parse failures
// degrade to absence after being logged and reported; label-store faults
// still propagate.
func (s *Service) SourceInfo(ctx context.Context, address string) (*SourceInfo, error) {
	labelCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	label, err := s.labels.MostRecent(labelCtx, address, labels.KindVerifiedContract)
	cancel()
	if err != nil {
		return nil, err
	}
	if label == nil {
		return nil, nil
	}

	uri, ok := labels.StringField(label.Data, "object_uri")
	if !ok {
		return s.degrade(ctx, address, fmt.Errorf("verified-contract label for %s has no object_uri", address))
	}

	bucket, key, err := parseObjectURI(uri)
	if err != nil {
		return s.degrade(ctx, address, err)
	}

	getCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	raw, err := s.objects.Get(getCtx, bucket, key)
	cancel()
	if err != nil {
		return s.degrade(ctx, address, err)
	}

	info, err := decodeSourceObject(raw)
	if err != nil {
		return s.degrade(ctx, address, fmt.Errorf("decode %s: %w", uri, err))
	}
	return info, nil
}

// UploadABI validates and persists a submitted ABI document, returning the
// update descriptor for the caller's resource state. Validation failures
// abort before any write: an invalid ABI is never persisted.
func (s *Service) UploadABI(ctx context.Context, resource Resource, abiText string) (*Update, error) {
	if err := contracts.ValidateABI(abiText); err != nil {
		return nil, err
	}

	key := ABIKey(s.prefix, resource.Address, resource.ID)
	metadata := map[string]string{provenanceKey: provenanceValue}

	putCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := s.objects.Put(putCtx, s.bucket, key, []byte(abiText), "application/json", metadata); err != nil {
		return nil, fmt.Errorf("upload abi for %s: %w", resource.Address, err)
	}

	s.logger.Info("Uploaded contract ABI",
		zap.String("address", resource.Address),
		zap.String("bucket", s.bucket),
		zap.String("key", key))

	return &Update{ABIUploaded: true, Bucket: s.bucket, Key: key}, nil
}

func (s *Service) degrade(ctx context.Context, address string, err error) (*SourceInfo, error) {
	s.logger.Error("Failed to load verified contract source",
		zap.String("address", address), zap.Error(err))
	s.reporter.ErrorReport(ctx, err, "source:verified_contract")
	return nil, nil
}

// parseObjectURI splits an s3://bucket/key reference from label data.
func parseObjectURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("unsupported object uri %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("object uri %q is missing bucket or key", uri)
	}
	return bucket, key, nil
}

// decodeSourceObject extracts the verified-source fields from a fetched
// artifact object of the form {"data": {ContractName, SourceCode,
// CompilerVersion, ABI}}. Every expected field must be present.
func decodeSourceObject(raw []byte) (*SourceInfo, error) {
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("artifact object has no data payload")
	}

	info := &SourceInfo{}
	for field, dest := range map[string]*string{
		"ContractName":    &info.Name,
		"SourceCode":      &info.SourceCode,
		"CompilerVersion": &info.CompilerVersion,
	} {
		rawField, ok := envelope.Data[field]
		if !ok {
			return nil, fmt.Errorf("artifact object is missing %s", field)
		}
		if err := json.Unmarshal(rawField, dest); err != nil {
			return nil, fmt.Errorf("artifact field %s: %w", field, err)
		}
	}

	abi, ok := envelope.Data["ABI"]
	if !ok {
		return nil, fmt.Errorf("artifact object is missing ABI")
	}
	info.ABI = abi

	return info, nil
}
