//Package visitor provides uniform iteration over runtime containers: any
//slice value and any string keyed map value, with mapping visits ordered by
//key so that container walks are deterministic.
package visitor
