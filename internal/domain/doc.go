// Package domain defines the core business entities of the book-review
// application and the validation rules that apply to them, independent of
// storage or transport concerns.
package domain
