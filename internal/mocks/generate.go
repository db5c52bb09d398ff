package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Reader --dir ../domain/entity --output domain/entity --outpkg entitymock --filename reader_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Scraper --dir ../scrape/scraper --output scrape/scraper --outpkg scrapermock --filename scraper_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Upserter --dir ../usecase --output usecase --outpkg usecasemock --filename upserter_mock.go
