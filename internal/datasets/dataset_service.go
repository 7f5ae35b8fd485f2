package datasets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"galaxy-datagen/internal/dispatchers"
	"galaxy-datagen/internal/shared/filestorages"
	"galaxy-datagen/internal/shared/svcerrors"
)

const csvSuffix = ".csv"

// DatasetService serves data sets previously written by the generator.
// Only names the dispatcher can produce ("<n>.csv" with n a valid particle
// count) are served.
//
//go:generate mockgen -source=dataset_service.go -destination=./mocks/dataset_service_mock.go -package=mocks
type DatasetService interface {
	Open(ctx context.Context, name string) (*filestorages.Object, error)
}

type datasetService struct {
	fileStorage filestorages.FileStorage
}

func NewDatasetService(fileStorage filestorages.FileStorage) DatasetService {
	return &datasetService{fileStorage: fileStorage}
}

func (s *datasetService) Open(ctx context.Context, name string) (*filestorages.Object, error) {
	if !isDatasetName(name) {
		return nil, errInvalidDatasetName(name)
	}

	obj, err := s.fileStorage.Get(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, filestorages.ErrFileNotFound):
			return nil, errDatasetNotFound(name, err)
		case errors.Is(err, filestorages.ErrInvalidKey):
			return nil, errInvalidDatasetName(name)
		default:
			return nil, errInternalDatasetReadFailed(err)
		}
	}
	return obj, nil
}

func isDatasetName(name string) bool {
	stem, ok := strings.CutSuffix(name, csvSuffix)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(stem)
	if err != nil || strconv.Itoa(n) != stem {
		return false
	}
	return dispatchers.IsValidParticleCount(n)
}

// DatasetService errors
const (
	codeInvalidDatasetName = "DST_1000"
	codeDatasetNotFound    = "DST_1001"

	codeInternalDatasetReadFailed = "DST_9000"
)

func errInvalidDatasetName(name string) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidDatasetName,
		fmt.Sprintf("invalid data set name %q: expected <num_particles>.csv", name), nil)
}

func errDatasetNotFound(name string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewNotFoundError(codeDatasetNotFound,
		fmt.Sprintf("data set %q does not exist (yet)", name), cause)
}

func errInternalDatasetReadFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalDatasetReadFailed, fmt.Errorf("datasetReadFailed: %w", cause))
}
