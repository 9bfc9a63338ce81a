package model

// Identity is the identity of the API token owner.
type Identity struct {
	UserID      string
	UserEmail   string
	WorkspaceID string
}

// ComponentSummary is the minimal information of a component.
type ComponentSummary struct {
	ID   string
	Name string
}

// View is a view a component belongs to.
type View struct {
	ID   string
	Name string
}

// ManagementFunction is a management function that can be executed against a component.
type ManagementFunction struct {
	ID   string
	Name string
}

// Component is a component of a change set with its views and management functions.
type Component struct {
	ID                  string
	Name                string
	Views               []View
	ManagementFunctions []ManagementFunction
}

// ComponentProperties are the properties set on a component.
type ComponentProperties struct {
	Domain map[string]any
}

// ManagementFunctionResult is the result of a management function execution.
type ManagementFunctionResult struct {
	// Message has the logs returned by the function.
	Message string
}
