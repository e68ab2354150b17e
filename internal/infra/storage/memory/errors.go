package memory

import "errors"

// ErrInvalidSeed возвращается при некорректном файле начальных данных
var ErrInvalidSeed = errors.New("memory: invalid seed")
