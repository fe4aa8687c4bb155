// Package dto holds the small contract shared by dtogen and the code it
// generates: member roles and the change notification protocols.
//
// A struct opts into generation with a comment annotation:
//
//	//dto::source
//	type Customer struct {
//		//dto::member -Roles=Create,Read
//		Name string
//	}
//
// Running dtogen emits a CustomerDTO type exposing Name, a SetName setter
// that raises change notifications, and ToDTO/Apply bridges.
package dto

// Method names of the notification protocols
const (
	PropertyChangedMethod  = "OnPropertyChanged"
	PropertyChangingMethod = "OnPropertyChanging"
)

// PropertyChangedNotifier is implemented by types reporting a property after its value changed
type PropertyChangedNotifier interface {
	OnPropertyChanged(fn func(property string))
}

// PropertyChangingNotifier is implemented by types reporting a property before its value changes
type PropertyChangingNotifier interface {
	OnPropertyChanging(fn func(property string))
}

// Notifier combines both protocols. Every generated DTO implements it.
type Notifier interface {
	PropertyChangedNotifier
	PropertyChangingNotifier
}
