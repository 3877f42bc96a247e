package pagination

// PageDefaultSize is the number of hits requested per page when not configured
const PageDefaultSize = 15

// PageMaxSize is the upper bound the upstream search API accepts for a single page
const PageMaxSize = 500
