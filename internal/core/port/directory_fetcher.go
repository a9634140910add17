package port

// DirectoryFetcherPort загружает одну страницу каталога.
type DirectoryFetcherPort interface {
	// Fetch выполняет один GET-запрос и возвращает разметку страницы.
	// Ошибки возвращаются как *domain.FetchError.
	Fetch(targetURL string) (string, error)
}
