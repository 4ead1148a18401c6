package module

// Name identifies a module kind. The set of names is closed: the registry
// only accepts the values declared here.
type Name string

// Module names.
const (
	Tools                 Name = "Tools"
	UI                    Name = "UI"
	Caret                 Name = "Caret"
	BlockManager          Name = "BlockManager"
	Events                Name = "Events"
	ModificationsObserver Name = "ModificationsObserver"
	Renderer              Name = "Renderer"
	Saver                 Name = "Saver"
	Sanitizer             Name = "Sanitizer"
	Shortcuts             Name = "Shortcuts"
	ReadOnly              Name = "ReadOnly"
	I18n                  Name = "I18n"
)

// All lists every module name in declaration order.
var All = []Name{
	Tools,
	UI,
	Caret,
	BlockManager,
	Events,
	ModificationsObserver,
	Renderer,
	Saver,
	Sanitizer,
	Shortcuts,
	ReadOnly,
	I18n,
}

// Valid reports whether n is one of the declared names.
func (n Name) Valid() bool {
	for _, known := range All {
		if n == known {
			return true
		}
	}
	return false
}

// String returns the name.
func (n Name) String() string {
	return string(n)
}
