package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate - целочисленная координата участка (parcel) в сетке мира
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pointer возвращает каноническую строку "x,y"
func (c Coordinate) Pointer() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

func (c Coordinate) String() string {
	return c.Pointer()
}

// ParsePointer разбирает строку вида "x,y".
// Пробелы вокруг компонент допускаются, всё остальное считается ошибкой.
func ParsePointer(p string) (Coordinate, error) {
	xs, ys, ok := strings.Cut(p, ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("malformed pointer %q", p)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Coordinate{}, fmt.Errorf("malformed pointer %q: %w", p, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Coordinate{}, fmt.Errorf("malformed pointer %q: %w", p, err)
	}
	return Coordinate{X: x, Y: y}, nil
}

// GridBounds - квадратная сетка [Min, Max] x [Min, Max], границы включительно
type GridBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Validate проверяет, что границы не перевёрнуты
func (b GridBounds) Validate() error {
	if b.Max < b.Min {
		return fmt.Errorf("invalid grid bounds: max %d < min %d", b.Max, b.Min)
	}
	return nil
}

// Side - количество координат по одной оси
func (b GridBounds) Side() int {
	return b.Max - b.Min + 1
}

// Size - общее количество участков в сетке
func (b GridBounds) Size() int {
	side := b.Side()
	return side * side
}

func (b GridBounds) Contains(c Coordinate) bool {
	return c.X >= b.Min && c.X <= b.Max && c.Y >= b.Min && c.Y <= b.Max
}

// Index возвращает плотный индекс координаты (x-major).
// Вызывающий код обязан проверить Contains.
func (b GridBounds) Index(c Coordinate) int {
	return (c.X-b.Min)*b.Side() + (c.Y - b.Min)
}

// At - обратное преобразование к Index
func (b GridBounds) At(i int) Coordinate {
	side := b.Side()
	return Coordinate{X: b.Min + i/side, Y: b.Min + i%side}
}

// Region - прямоугольная подобласть сетки, границы включительно
type Region struct {
	StartX int `json:"startX"`
	EndX   int `json:"endX"`
	StartY int `json:"startY"`
	EndY   int `json:"endY"`
}

// Size - количество участков в регионе
func (r Region) Size() int {
	return (r.EndX - r.StartX + 1) * (r.EndY - r.StartY + 1)
}

// Pointers перечисляет указатели региона: x снаружи, y внутри
func (r Region) Pointers() []string {
	pointers := make([]string, 0, r.Size())
	for x := r.StartX; x <= r.EndX; x++ {
		for y := r.StartY; y <= r.EndY; y++ {
			pointers = append(pointers, Coordinate{X: x, Y: y}.Pointer())
		}
	}
	return pointers
}
