package storefront

const moneyFragment = `
fragment MoneyFragment on MoneyV2 { amount currencyCode }
`

const imageFragment = `
fragment ImageFragment on Image { url altText }
`

const productCardFragment = `
fragment ProductCardFields on Product {
  id
  title
  handle
  description
  images(first: 1) { nodes { url(transform: {maxWidth: 800}) altText } }
  variants(first: 1) { nodes { price { ...MoneyFragment } } }
}
`

// CollectionPageQuery loads one page of a collection with facets applied.
const CollectionPageQuery = moneyFragment + productCardFragment + `
query CollectionPage(
  $handle: String!
  $first: Int!
  $after: String
  $filters: [ProductFilter!]
  $sortKey: ProductCollectionSortKeys
  $reverse: Boolean
) {
  collection(handle: $handle) {
    id
    title
    description
    products(first: $first, after: $after, filters: $filters, sortKey: $sortKey, reverse: $reverse) {
      filters {
        id
        label
        type
        values { id label count input }
      }
      nodes { ...ProductCardFields }
      pageInfo { hasNextPage hasPreviousPage endCursor startCursor }
    }
  }
}
`

// ProductQuery loads a product detail page.
const ProductQuery = moneyFragment + imageFragment + `
query Product($handle: String!) {
  product(handle: $handle) {
    id
    title
    handle
    description
    descriptionHtml
    featuredImage { ...ImageFragment }
    images(first: 8) { nodes { ...ImageFragment } }
    options { name values }
    variants(first: 50) {
      nodes {
        id
        title
        availableForSale
        price { ...MoneyFragment }
        selectedOptions { name value }
      }
    }
  }
}
`

// ProductSearchQuery runs a storefront product search.
const ProductSearchQuery = moneyFragment + `
query ProductSearch($query: String!, $first: Int!, $after: String, $sortKey: ProductSortKeys, $reverse: Boolean) {
  products(query: $query, first: $first, after: $after, sortKey: $sortKey, reverse: $reverse) {
    edges {
      cursor
      node {
        id
        title
        handle
        description
        featuredImage { url altText }
        variants(first: 1) { nodes { price { ...MoneyFragment } } }
      }
    }
    pageInfo { hasNextPage hasPreviousPage endCursor startCursor }
  }
}
`

const showcaseProductFragment = `
fragment ShowcaseProductFields on Product {
  id
  title
  handle
  description
  descriptionHtml
  featuredImage { ...ImageFragment }
  images(first: $galleryCount) { nodes { ...ImageFragment } }
  options { name values }
  variants(first: 10) {
    nodes {
      id
      title
      availableForSale
      price { ...MoneyFragment }
      selectedOptions { name value }
    }
  }
  metafields(identifiers: $metafieldIdentifiers) { namespace key value type }
}
`

// HomepageQuery loads the grid, showcase and featured collections at once.
const HomepageQuery = moneyFragment + imageFragment + productCardFragment + showcaseProductFragment + `
query HomepageData(
  $gridHandle: String!
  $showcaseHandle: String!
  $featuredHandle: String!
  $gridCount: Int!
  $featuredCount: Int!
  $galleryCount: Int!
  $metafieldIdentifiers: [HasMetafieldsIdentifier!]!
) {
  grid: collection(handle: $gridHandle) {
    id
    title
    products(first: $gridCount) { nodes { ...ProductCardFields } }
  }
  showcase: collection(handle: $showcaseHandle) {
    id
    title
    products(first: 1) { nodes { ...ShowcaseProductFields } }
  }
  featured: collection(handle: $featuredHandle) {
    id
    title
    products(first: $featuredCount) { nodes { ...ProductCardFields } }
  }
  fallback: products(first: $gridCount) { nodes { ...ProductCardFields } }
}
`

// LayoutQuery loads shop-wide data for the page chrome.
const LayoutQuery = `
query Layout {
  shop { name description }
}
`

const cartFragment = moneyFragment + `
fragment CartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  cost {
    subtotalAmount { ...MoneyFragment }
    totalAmount { ...MoneyFragment }
  }
  lines(first: 100) {
    nodes {
      id
      quantity
      cost { totalAmount { ...MoneyFragment } }
      merchandise {
        ... on ProductVariant {
          id
          title
          price { ...MoneyFragment }
          image { url }
          product { title handle }
        }
      }
    }
  }
}
`

const CartQuery = cartFragment + `
query Cart($cartId: ID!) {
  cart(id: $cartId) { ...CartFields }
}
`

const CartCreateMutation = cartFragment + `
mutation CartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart { ...CartFields }
    userErrors { code field message }
  }
}
`

const CartLinesAddMutation = cartFragment + `
mutation CartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { code field message }
  }
}
`

const CartLinesUpdateMutation = cartFragment + `
mutation CartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { code field message }
  }
}
`

const CartLinesRemoveMutation = cartFragment + `
mutation CartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { ...CartFields }
    userErrors { code field message }
  }
}
`

const CustomerAccessTokenCreateMutation = `
mutation customerAccessTokenCreate($input: CustomerAccessTokenCreateInput!) {
  customerAccessTokenCreate(input: $input) {
    customerAccessToken { accessToken expiresAt }
    customerUserErrors { code field message }
  }
}
`

const CustomerAccessTokenDeleteMutation = `
mutation customerAccessTokenDelete($customerAccessToken: String!) {
  customerAccessTokenDelete(customerAccessToken: $customerAccessToken) {
    deletedAccessToken
    deletedCustomerAccessTokenId
    userErrors { field message }
  }
}
`

const CustomerAccessTokenRenewMutation = `
mutation customerAccessTokenRenew($customerAccessToken: String!) {
  customerAccessTokenRenew(customerAccessToken: $customerAccessToken) {
    customerAccessToken { accessToken expiresAt }
    userErrors { field message }
  }
}
`

const CustomerCreateMutation = `
mutation customerCreate($input: CustomerCreateInput!) {
  customerCreate(input: $input) {
    customer { id email firstName lastName }
    customerUserErrors { code field message }
  }
}
`

const CustomerRecoverMutation = `
mutation customerRecover($email: String!) {
  customerRecover(email: $email) {
    customerUserErrors { code field message }
  }
}
`

const CustomerUpdateMutation = `
mutation customerUpdate($customerAccessToken: String!, $customer: CustomerUpdateInput!) {
  customerUpdate(customerAccessToken: $customerAccessToken, customer: $customer) {
    customer { id email firstName lastName }
    customerUserErrors { code field message }
  }
}
`

const CustomerQuery = `
query getCustomer($customerAccessToken: String!) {
  customer(customerAccessToken: $customerAccessToken) {
    id
    displayName
    email
    firstName
    lastName
    orders(first: 10) {
      edges {
        node {
          id
          orderNumber
          totalPrice { amount currencyCode }
          processedAt
        }
      }
    }
  }
}
`
