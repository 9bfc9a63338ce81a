package remotemock

//go:generate mockery --case underscore --output . --outpkg remotemock --name API --dir .. --structname MockAPI --filename mocks.go
