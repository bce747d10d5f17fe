package applytemplate

// ResolveStringForTest exposes resolve for string Values.
var ResolveStringForTest = resolve[string]
