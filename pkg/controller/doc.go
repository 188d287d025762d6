// Package controller wires the public-form pipeline into a page: the
// submission gate, the live revalidation loop, environment adaptation and
// optional decorators. A Controller is initialised once per page load and
// torn down on navigation; every listener it installs is delegated at the
// document level, so markup replaced out of band is picked up without
// re-registration.
package controller
