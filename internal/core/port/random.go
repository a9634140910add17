package port

// RandomSource - источник значений-заглушек для полей, которых нет на
// странице каталога. Реализации должны быть безопасны для конкурентного
// использования.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}
