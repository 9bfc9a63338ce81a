package storagemock

//go:generate mockery --case underscore --output . --outpkg storagemock --name Repository --dir .. --structname MockRepository --filename mocks.go
